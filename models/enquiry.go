package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EnquiryPending = "pending"
	EnquiryHandled = "handled"
)

type AdminNote struct {
	Text      string             `bson:"text" json:"text"`
	Admin     primitive.ObjectID `bson:"admin" json:"admin"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Enquiry struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name"`
	Email      string              `bson:"email" json:"email"`
	Phone      string              `bson:"phone" json:"phone"`
	Message    string              `bson:"message" json:"message"`
	PropertyID *primitive.ObjectID `bson:"propertyId,omitempty" json:"propertyId,omitempty"`
	Property   *PropertySummary    `bson:"-" json:"property,omitempty"`
	AdminNotes []AdminNote         `bson:"adminNotes" json:"adminNotes"`
	Status     string              `bson:"status" json:"status"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// PropertySummary is the slice of a property attached to enquiry reads.
type PropertySummary struct {
	ID      primitive.ObjectID `json:"id"`
	Title   string             `json:"title"`
	Price   float64            `json:"price"`
	City    string             `json:"city"`
	Address string             `json:"address"`
}

type EnquiryStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
	Handled int64 `json:"handled"`
}

type EnquiryList struct {
	Count int          `json:"count"`
	Stats EnquiryStats `json:"stats"`
	Data  []Enquiry    `json:"data"`
}

type EnquiryRequest struct {
	Name       string `json:"name" validate:"required,max=50"`
	Email      string `json:"email" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Message    string `json:"message" validate:"required,max=1000"`
	PropertyID string `json:"propertyId"`
}

type EnquiryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending handled"`
}

type EnquiryNoteRequest struct {
	Text string `json:"text"`
}
