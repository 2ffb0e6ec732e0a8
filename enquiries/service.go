// Package enquiries captures buyer leads and the admin workflow around them.
package enquiries

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/utils"
)

const (
	RecentLimit      = 5
	MaxNameLength    = 50
	MaxMessageLength = 1000
)

type Store interface {
	Insert(ctx context.Context, e *models.Enquiry) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.Enquiry, error)
	List(ctx context.Context, status string, limit int64) ([]models.Enquiry, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Enquiry, error)
	PushNote(ctx context.Context, id primitive.ObjectID, note models.AdminNote) (*models.Enquiry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type PropertyGetter interface {
	Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
}

type Service struct {
	store      Store
	properties PropertyGetter
	log        *slog.Logger
	now        func() time.Time
}

func NewService(s Store, properties PropertyGetter, log *slog.Logger) *Service {
	return &Service{store: s, properties: properties, log: log, now: time.Now}
}

// Submit records a new pending enquiry. A referenced property must exist.
func (s *Service) Submit(ctx context.Context, req models.EnquiryRequest) (*models.Enquiry, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)
	message := strings.TrimSpace(req.Message)

	if name == "" || email == "" || phone == "" || message == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, apperr.Validation("Name cannot be more than %d characters", MaxNameLength)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return nil, apperr.Validation("Message cannot be more than %d characters", MaxMessageLength)
	}
	if !utils.IsValidPhone(phone) {
		return nil, apperr.Validation("Please provide a valid 10-digit phone number")
	}
	if !utils.IsValidEmail(email) {
		return nil, apperr.Validation("Please add a valid email")
	}

	var property *models.Property
	var propertyID *primitive.ObjectID
	if raw := strings.TrimSpace(req.PropertyID); raw != "" {
		oid, err := utils.ParseObjectID(raw, "property")
		if err != nil {
			return nil, err
		}
		if property, err = s.properties.Get(ctx, oid); err != nil {
			return nil, err
		}
		propertyID = &oid
	}

	now := s.now().UTC()
	e := &models.Enquiry{
		Name:       name,
		Email:      email,
		Phone:      phone,
		Message:    message,
		PropertyID: propertyID,
		AdminNotes: []models.AdminNote{},
		Status:     models.EnquiryPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}
	if property != nil {
		e.Property = summarize(property)
	}

	s.log.Info("enquiry submitted", "enquiry_id", e.ID.Hex(), "has_property", propertyID != nil)
	return e, nil
}

// List returns enquiries newest first with overall status counts. An unknown
// status filter is ignored.
func (s *Service) List(ctx context.Context, status string) (*models.EnquiryList, error) {
	if status != models.EnquiryPending && status != models.EnquiryHandled {
		status = ""
	}

	var (
		data  []models.Enquiry
		stats models.EnquiryStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data, err = s.store.List(gctx, status, 0)
		return err
	})
	g.Go(func() (err error) {
		stats.Total, err = s.store.CountByStatus(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.Pending, err = s.store.CountByStatus(gctx, models.EnquiryPending)
		return err
	})
	g.Go(func() (err error) {
		stats.Handled, err = s.store.CountByStatus(gctx, models.EnquiryHandled)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.attach(ctx, data); err != nil {
		return nil, err
	}
	return &models.EnquiryList{Count: len(data), Stats: stats, Data: data}, nil
}

func (s *Service) Recent(ctx context.Context) ([]models.Enquiry, error) {
	data, err := s.store.List(ctx, "", RecentLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attach(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*models.Enquiry, error) {
	if status != models.EnquiryPending && status != models.EnquiryHandled {
		return nil, apperr.Validation("Please provide a valid status (pending or handled)")
	}
	oid, err := utils.ParseObjectID(id, "enquiry")
	if err != nil {
		return nil, err
	}
	e, err := s.store.SetStatus(ctx, oid, status)
	if err != nil {
		return nil, err
	}
	return s.attachOne(ctx, e)
}

// AddNote appends an admin note. The text is trimmed and must be non-empty.
func (s *Service) AddNote(ctx context.Context, id string, adminID primitive.ObjectID, text string) (*models.Enquiry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("Please provide a non-empty note text")
	}
	oid, err := utils.ParseObjectID(id, "enquiry")
	if err != nil {
		return nil, err
	}
	e, err := s.store.PushNote(ctx, oid, models.AdminNote{Text: text, Admin: adminID, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	return s.attachOne(ctx, e)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := utils.ParseObjectID(id, "enquiry")
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, oid)
}

func (s *Service) attachOne(ctx context.Context, e *models.Enquiry) (*models.Enquiry, error) {
	list := []models.Enquiry{*e}
	if err := s.attach(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// attach fills in the property summary of each enquiry. Properties deleted
// since the enquiry was made are left empty.
func (s *Service) attach(ctx context.Context, enquiries []models.Enquiry) error {
	seen := map[primitive.ObjectID]*models.PropertySummary{}
	for i := range enquiries {
		pid := enquiries[i].PropertyID
		if pid == nil {
			continue
		}
		summary, ok := seen[*pid]
		if !ok {
			p, err := s.properties.Get(ctx, *pid)
			switch {
			case apperr.Is(err, apperr.KindNotFound):
			case err != nil:
				return err
			default:
				summary = summarize(p)
			}
			seen[*pid] = summary
		}
		enquiries[i].Property = summary
	}
	return nil
}

func summarize(p *models.Property) *models.PropertySummary {
	return &models.PropertySummary{ID: p.ID, Title: p.Title, Price: p.Price, City: p.City, Address: p.Address}
}
