package analytics

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
)

type EventWriter interface {
	Insert(ctx context.Context, e *models.AnalyticsEvent) error
}

type PropertyGetter interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
}

// Visitor identifies who triggered an event. SessionID falls back to IP.
type Visitor struct {
	SessionID string
	IP        string
	UserAgent string
}

func (v Visitor) session() string {
	if s := strings.TrimSpace(v.SessionID); s != "" {
		return s
	}
	return v.IP
}

type FilterCriteria struct {
	City     *string
	MaxPrice *float64
	BHK      *int
}

type Tracker struct {
	events     EventWriter
	properties PropertyGetter
	now        func() time.Time
}

func NewTracker(events EventWriter, properties PropertyGetter) *Tracker {
	return &Tracker{events: events, properties: properties, now: time.Now}
}

func (t *Tracker) TrackView(ctx context.Context, propertyID string, v Visitor) (*models.AnalyticsEvent, error) {
	return t.trackProperty(ctx, models.EventView, propertyID, v)
}

func (t *Tracker) TrackClick(ctx context.Context, propertyID string, v Visitor) (*models.AnalyticsEvent, error) {
	return t.trackProperty(ctx, models.EventClick, propertyID, v)
}

func (t *Tracker) trackProperty(ctx context.Context, eventType, propertyID string, v Visitor) (*models.AnalyticsEvent, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, apperr.Validation("Property ID is required")
	}
	id, err := primitive.ObjectIDFromHex(propertyID)
	if err != nil {
		return nil, apperr.Validation("Invalid property ID")
	}

	p, err := t.properties.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	city, price, bhk := p.City, p.Price, p.BHK
	event := &models.AnalyticsEvent{
		EventType:  eventType,
		PropertyID: &id,
		City:       &city,
		Price:      &price,
		BHK:        &bhk,
		SessionID:  v.session(),
		IPAddress:  v.IP,
		UserAgent:  v.UserAgent,
		Timestamp:  t.now().UTC(),
	}
	if err := t.events.Insert(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// TrackFilter records a search. Every criterion may be absent.
func (t *Tracker) TrackFilter(ctx context.Context, c FilterCriteria, v Visitor) (*models.AnalyticsEvent, error) {
	if c.City != nil && strings.TrimSpace(*c.City) == "" {
		c.City = nil
	}
	event := &models.AnalyticsEvent{
		EventType: models.EventFilter,
		City:      c.City,
		Price:     c.MaxPrice,
		BHK:       c.BHK,
		SessionID: v.session(),
		IPAddress: v.IP,
		UserAgent: v.UserAgent,
		Timestamp: t.now().UTC(),
	}
	if err := t.events.Insert(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}
