package properties

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

// Upload is a file received with a create or update request.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// Input carries the form fields of a create or update. Text fields are raw
// form values; empty means "not provided".
type Input struct {
	Title       string
	Description string
	Price       string
	BHK         string
	Bathrooms   string
	City        string
	Address     string
	Area        string
	Amenities   string
	Collections string
	Status      string
	Featured    string

	FeaturedLocationTitle  string
	CuratedPropertyTitle   string
	RemoveFeaturedLocation bool
	RemoveCuratedProperty  bool

	Images                []Upload
	Video                 *Upload
	Videos                []Upload
	FeaturedLocationImage *Upload
	CuratedPropertyImage  *Upload
}

// ParseList accepts a JSON string array or a comma separated list.
func ParseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		list = strings.Split(raw, ",")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// NormalizeCity title-cases a city name: "navi  MUMBAI" -> "Navi Mumbai".
func NormalizeCity(city string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(city), " "))
}

func parsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperr.Validation("price must be a non-negative number")
	}
	return v, nil
}

// maxRooms bounds bhk and bathroom counts.
const maxRooms = 10

func parseCount(raw, field string, min int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < min || v > maxRooms {
		return 0, apperr.Validation("%s must be a whole number between %d and %d", field, min, maxRooms)
	}
	return v, nil
}

func parseCollections(raw string) ([]string, error) {
	keys := ParseList(raw)
	for i, k := range keys {
		k = strings.ToLower(k)
		if !models.IsCollectionKey(k) {
			return nil, apperr.Validation("Unknown collection key: %s. Valid keys: %s", k, strings.Join(models.CollectionKeys(), ", "))
		}
		keys[i] = k
	}
	return keys, nil
}

func parseStatus(raw string) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if !models.ValidStatus(status) {
		return "", apperr.Validation("status must be one of active, inactive, sold")
	}
	return status, nil
}

func parseBool(raw string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(raw))
	return b
}

// apply copies every provided scalar field of in onto p.
func (in Input) apply(p *models.Property) error {
	if v := strings.TrimSpace(in.Title); v != "" {
		p.Title = v
	}
	if v := strings.TrimSpace(in.Description); v != "" {
		p.Description = v
	}
	if in.Price != "" {
		price, err := parsePrice(in.Price)
		if err != nil {
			return err
		}
		p.Price = price
	}
	if in.BHK != "" {
		bhk, err := parseCount(in.BHK, "bhk", 1)
		if err != nil {
			return err
		}
		p.BHK = bhk
	}
	if in.Bathrooms != "" {
		baths, err := parseCount(in.Bathrooms, "bathrooms", 1)
		if err != nil {
			return err
		}
		p.Bathrooms = baths
	}
	if strings.TrimSpace(in.City) != "" {
		p.City = NormalizeCity(in.City)
	}
	if v := strings.TrimSpace(in.Address); v != "" {
		p.Address = v
	}
	if v := strings.TrimSpace(in.Area); v != "" {
		p.Area = v
	}
	if in.Amenities != "" {
		p.Amenities = ParseList(in.Amenities)
	}
	if in.Collections != "" {
		cols, err := parseCollections(in.Collections)
		if err != nil {
			return err
		}
		p.Collections = cols
	}
	if in.Status != "" {
		status, err := parseStatus(in.Status)
		if err != nil {
			return err
		}
		p.Status = status
	}
	if in.Featured != "" {
		p.Featured = parseBool(in.Featured)
	}
	return nil
}

func (in Input) requireCreateFields() error {
	if strings.TrimSpace(in.Title) == "" || in.Price == "" || strings.TrimSpace(in.City) == "" ||
		in.BHK == "" || in.Bathrooms == "" {
		return apperr.Validation("Please fill all required fields")
	}
	return nil
}
