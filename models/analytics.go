package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventView   = "view"
	EventClick  = "click"
	EventFilter = "filter"
)

// AnalyticsEvent is an append-only log entry. City, Price and BHK are a
// snapshot taken when the event was recorded.
type AnalyticsEvent struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventType  string              `bson:"eventType" json:"eventType"`
	PropertyID *primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	City       *string             `bson:"city" json:"city"`
	Price      *float64            `bson:"price" json:"price"`
	BHK        *int                `bson:"bhk" json:"bhk"`
	SessionID  string              `bson:"sessionId" json:"sessionId"`
	IPAddress  string              `bson:"ipAddress" json:"ipAddress"`
	UserAgent  string              `bson:"userAgent" json:"userAgent"`
	Timestamp  time.Time           `bson:"timestamp" json:"timestamp"`
}

func ValidEventType(t string) bool {
	switch t {
	case EventView, EventClick, EventFilter:
		return true
	}
	return false
}

type TrackRequest struct {
	PropertyID string `json:"propertyId"`
	SessionID  string `json:"sessionId"`
}

type TrackFilterRequest struct {
	City       *string `json:"city"`
	PriceRange *struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"priceRange"`
	BHK       *int   `json:"bhk"`
	SessionID string `json:"sessionId"`
}

type TopProperty struct {
	PropertyID   primitive.ObjectID `bson:"propertyId" json:"propertyId"`
	Title        string             `bson:"title" json:"title"`
	City         string             `bson:"city" json:"city"`
	Price        float64            `bson:"price" json:"price"`
	BHK          int                `bson:"bhk" json:"bhk"`
	Image        string             `bson:"image" json:"image"`
	Count        int64              `bson:"count" json:"count"`
	LastActivity time.Time          `bson:"lastActivity" json:"lastActivity"`
}

type TopLocation struct {
	City   string `bson:"city" json:"city"`
	Views  int64  `bson:"views" json:"views"`
	Clicks int64  `bson:"clicks" json:"clicks"`
	Total  int64  `bson:"total" json:"total"`
}

type PriceBucket struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

type BHKCount struct {
	BHK   int   `bson:"bhk" json:"bhk"`
	Count int64 `bson:"count" json:"count"`
}

// DailyCount is one (day, event type) bucket. Day is formatted YYYY-MM-DD.
type DailyCount struct {
	Day       string `bson:"day" json:"day"`
	EventType string `bson:"eventType" json:"eventType"`
	Count     int64  `bson:"count" json:"count"`
}

type EngagementDay struct {
	Date   string `json:"date"`
	Views  int64  `json:"views"`
	Clicks int64  `json:"clicks"`
}

type CityCount struct {
	City  string `bson:"city" json:"city"`
	Count int64  `bson:"count" json:"count"`
}

type AnalyticsSummary struct {
	TotalViews     int64   `json:"totalViews"`
	TotalClicks    int64   `json:"totalClicks"`
	TopCity        string  `json:"topCity"`
	TopCityCount   int64   `json:"topCityCount"`
	EngagementRate float64 `json:"engagementRate"`
}
