package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/properties"
)

type PropertyService interface {
	List(ctx context.Context, page properties.Page) (*models.PropertyPage, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Filter(ctx context.Context, f properties.FilterParams) (*models.PropertyPage, error)
	Cities(ctx context.Context) ([]string, error)
	CuratedCollections(ctx context.Context) ([]models.CollectionSummary, error)
	CollectionProperties(ctx context.Context, key string, page properties.Page) (*models.PropertyPage, error)
	FeaturedLocations(ctx context.Context) ([]models.TagSummary, error)
	CuratedTitles(ctx context.Context) ([]models.TagSummary, error)
	Create(ctx context.Context, in properties.Input) (*models.Property, error)
	Update(ctx context.Context, id string, in properties.Input) (*models.Property, error)
	Delete(ctx context.Context, id string) error
	DeleteImage(ctx context.Context, id string, index int) (*models.Property, error)
	ToggleFeatured(ctx context.Context, id string) (*models.Property, error)
}

type PropertyController struct {
	svc PropertyService
	log *slog.Logger
}

func NewPropertyController(svc PropertyService, log *slog.Logger) *PropertyController {
	return &PropertyController{svc: svc, log: log}
}

func (pc *PropertyController) ListProperties(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	result, err := pc.svc.List(c.Request().Context(), page)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (pc *PropertyController) GetProperty(c echo.Context) error {
	property, err := pc.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (pc *PropertyController) FilterProperties(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	f := properties.FilterParams{City: c.QueryParam("city"), Sort: c.QueryParam("sort"), Page: page}
	if f.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return respondError(c, pc.log, err)
	}
	if f.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return respondError(c, pc.log, err)
	}
	if c.QueryParam("bhk") != "" {
		bhk, err := queryInt(c, "bhk")
		if err != nil {
			return respondError(c, pc.log, err)
		}
		f.BHK = &bhk
	}

	result, err := pc.svc.Filter(c.Request().Context(), f)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (pc *PropertyController) GetCities(c echo.Context) error {
	cities, err := pc.svc.Cities(c.Request().Context())
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, cities)
}

func (pc *PropertyController) GetCuratedCollections(c echo.Context) error {
	collections, err := pc.svc.CuratedCollections(c.Request().Context())
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, collections)
}

func (pc *PropertyController) GetCollectionProperties(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	result, err := pc.svc.CollectionProperties(c.Request().Context(), c.Param("key"), page)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (pc *PropertyController) GetFeaturedLocations(c echo.Context) error {
	manual, err := pc.svc.FeaturedLocations(c.Request().Context())
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"manual": manual,
		"cities": []string{},
	})
}

func (pc *PropertyController) GetCuratedTitles(c echo.Context) error {
	titles, err := pc.svc.CuratedTitles(c.Request().Context())
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, titles)
}

func (pc *PropertyController) CreateProperty(c echo.Context) error {
	in, err := propertyInput(c)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	property, err := pc.svc.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusCreated, property)
}

func (pc *PropertyController) UpdateProperty(c echo.Context) error {
	in, err := propertyInput(c)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	property, err := pc.svc.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (pc *PropertyController) DeleteProperty(c echo.Context) error {
	if err := pc.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Property deleted successfully"})
}

func (pc *PropertyController) DeletePropertyImage(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("imageIndex"))
	if err != nil {
		return badRequest(c, "Invalid image index")
	}
	property, err := pc.svc.DeleteImage(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, property)
}

func (pc *PropertyController) ToggleFeatured(c echo.Context) error {
	property, err := pc.svc.ToggleFeatured(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, pc.log, err)
	}
	return c.JSON(http.StatusOK, property)
}

func pageParams(c echo.Context) (properties.Page, error) {
	page, err := queryInt(c, "page")
	if err != nil {
		return properties.Page{}, err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return properties.Page{}, err
	}
	return properties.Page{Page: page, Limit: limit}, nil
}

// mediaFields lists the accepted upload fields, their MIME family and cap.
var mediaFields = map[string]struct {
	family string
	max    int
}{
	"images":                {"image/", models.MaxImages},
	"video":                 {"video/", 1},
	"videos":                {"video/", models.MaxVideos},
	"featuredLocationImage": {"image/", 1},
	"curatedPropertyImage":  {"image/", 1},
}

func propertyInput(c echo.Context) (properties.Input, error) {
	in := properties.Input{
		Title:                  c.FormValue("title"),
		Description:            c.FormValue("description"),
		Price:                  c.FormValue("price"),
		BHK:                    c.FormValue("bhk"),
		Bathrooms:              c.FormValue("bathrooms"),
		City:                   c.FormValue("city"),
		Address:                c.FormValue("address"),
		Area:                   c.FormValue("area"),
		Amenities:              c.FormValue("amenities"),
		Collections:            c.FormValue("collections"),
		Status:                 c.FormValue("status"),
		Featured:               c.FormValue("featured"),
		FeaturedLocationTitle:  strings.TrimSpace(c.FormValue("featuredLocationTitle")),
		CuratedPropertyTitle:   strings.TrimSpace(c.FormValue("curatedPropertyTitle")),
		RemoveFeaturedLocation: c.FormValue("removeFeaturedLocation") == "true",
		RemoveCuratedProperty:  c.FormValue("removeCuratedProperty") == "true",
	}

	form, err := c.MultipartForm()
	if err != nil {
		// plain form or JSON body without files
		return in, nil
	}

	files := map[string][]properties.Upload{}
	for field, headers := range form.File {
		spec, ok := mediaFields[field]
		if !ok {
			return in, apperr.Validation("Invalid fieldname %s", field)
		}
		if len(headers) > spec.max {
			return in, apperr.Validation("Maximum %d files allowed for %s", spec.max, field)
		}
		for _, fh := range headers {
			if !strings.HasPrefix(fh.Header.Get("Content-Type"), spec.family) {
				return in, apperr.Validation("Only %s files are allowed for %s", strings.TrimSuffix(spec.family, "/"), field)
			}
			files[field] = append(files[field], upload(fh))
		}
	}

	in.Images = files["images"]
	in.Videos = files["videos"]
	in.Video = first(files["video"])
	in.FeaturedLocationImage = first(files["featuredLocationImage"])
	in.CuratedPropertyImage = first(files["curatedPropertyImage"])
	return in, nil
}

func upload(fh *multipart.FileHeader) properties.Upload {
	return properties.Upload{
		Filename: fh.Filename,
		Open:     func() (io.ReadCloser, error) { return fh.Open() },
	}
}

func first(uploads []properties.Upload) *properties.Upload {
	if len(uploads) == 0 {
		return nil
	}
	return &uploads[0]
}
