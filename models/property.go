package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusSold     = "sold"

	MaxImages = 15
	MaxVideos = 2
)

type MediaRef struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

// TaggedImage is an admin-assigned label with a representative image, used
// for featured locations and curated property tags.
type TaggedImage struct {
	Title string   `bson:"title" json:"title"`
	Image MediaRef `bson:"image" json:"image"`
}

type Property struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Price            float64            `bson:"price" json:"price"`
	BHK              int                `bson:"bhk" json:"bhk"`
	Bathrooms        int                `bson:"bathrooms" json:"bathrooms"`
	City             string             `bson:"city" json:"city"`
	Address          string             `bson:"address" json:"address"`
	Area             string             `bson:"area,omitempty" json:"area,omitempty"`
	Featured         bool               `bson:"featured" json:"featured"`
	Collections      []string           `bson:"collections" json:"collections"`
	FeaturedLocation *TaggedImage       `bson:"featuredLocation,omitempty" json:"featuredLocation,omitempty"`
	CuratedProperty  *TaggedImage       `bson:"curatedProperty,omitempty" json:"curatedProperty,omitempty"`
	Amenities        []string           `bson:"amenities" json:"amenities"`
	Images           []MediaRef         `bson:"images" json:"images"`
	Video            *MediaRef          `bson:"video,omitempty" json:"video,omitempty"`
	Videos           []MediaRef         `bson:"videos" json:"videos"`
	Status           string             `bson:"status" json:"status"`
	Views            int                `bson:"views" json:"views"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (p Property) FirstImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSold:
		return true
	}
	return false
}

type Collection struct {
	Key          string
	Title        string
	DefaultImage string
}

var Collections = []Collection{
	{Key: "new-projects", Title: "New Projects", DefaultImage: "https://images.unsplash.com/photo-1505691723518-36a5ac3be353?w=1200"},
	{Key: "ready-to-move", Title: "Ready to Move", DefaultImage: "https://images.unsplash.com/photo-1580587771525-78b9dba3b914?w=1200"},
	{Key: "luxury", Title: "Luxury Homes", DefaultImage: "https://images.unsplash.com/photo-1512914890250-353c97c9e7e2?w=1200"},
	{Key: "budget-friendly", Title: "Budget Friendly", DefaultImage: "https://images.unsplash.com/photo-1518780664697-55e3ad937233?w=1200"},
}

func CollectionKeys() []string {
	keys := make([]string, 0, len(Collections))
	for _, c := range Collections {
		keys = append(keys, c.Key)
	}
	return keys
}

func IsCollectionKey(key string) bool {
	for _, c := range Collections {
		if c.Key == key {
			return true
		}
	}
	return false
}

// CollectionSummary is one curated collection card.
type CollectionSummary struct {
	Key        string `json:"key"`
	Title      string `json:"title"`
	Count      string `json:"count"`
	Image      string `json:"image"`
	Properties int64  `json:"properties"`
}

// TagSummary groups active properties by a manual tag title.
type TagSummary struct {
	Title string `bson:"title" json:"title"`
	Count int64  `bson:"count" json:"count"`
	Image string `bson:"image" json:"image"`
}

type PropertyPage struct {
	Count int        `json:"count"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Pages int        `json:"pages"`
	Data  []Property `json:"data"`
}
