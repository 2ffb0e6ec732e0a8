package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/analytics"
	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/chatbot"
	"github.com/visheshsingal/hitech/config"
	"github.com/visheshsingal/hitech/middleware"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/properties"
	"github.com/visheshsingal/hitech/utils"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = utils.NewRequestValidator()
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestRespondErrorStatus(t *testing.T) {
	tests := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.Validation("Invalid property ID"), http.StatusBadRequest, "Invalid property ID"},
		{apperr.NotFound("Property"), http.StatusNotFound, "Property not found"},
		{apperr.Conflict("taken"), http.StatusConflict, "taken"},
		{apperr.Unauthorized("nope"), http.StatusUnauthorized, "nope"},
		{apperr.Upstream("media host failed", errors.New("boom")), http.StatusBadGateway, "media host failed"},
		{errors.New("socket closed"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			e := echo.New()
			e.GET("/", func(c echo.Context) error { return respondError(c, discard, tt.err) })
			rec := do(e, http.MethodGet, "/", "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}
}

type stubProperties struct {
	PropertyService
	page    properties.Page
	filter  properties.FilterParams
	input   properties.Input
	deleted string
}

func (s *stubProperties) List(_ context.Context, page properties.Page) (*models.PropertyPage, error) {
	s.page = page
	return &models.PropertyPage{Count: 1, Total: 1, Page: 1, Pages: 1, Data: []models.Property{{Title: "Sea View"}}}, nil
}

func (s *stubProperties) Get(_ context.Context, id string) (*models.Property, error) {
	if _, err := utils.ParseObjectID(id, "property"); err != nil {
		return nil, err
	}
	return nil, apperr.NotFound("Property")
}

func (s *stubProperties) Filter(_ context.Context, f properties.FilterParams) (*models.PropertyPage, error) {
	s.filter = f
	return &models.PropertyPage{}, nil
}

func (s *stubProperties) FeaturedLocations(context.Context) ([]models.TagSummary, error) {
	return []models.TagSummary{{Title: "Bandra", Count: 2}}, nil
}

func (s *stubProperties) Create(_ context.Context, in properties.Input) (*models.Property, error) {
	s.input = in
	return &models.Property{Title: in.Title}, nil
}

func (s *stubProperties) Delete(_ context.Context, id string) error {
	s.deleted = id
	return nil
}

func propertyServer(svc PropertyService) *echo.Echo {
	pc := NewPropertyController(svc, discard)
	e := newEcho()
	e.GET("/properties", pc.ListProperties)
	e.GET("/properties/filter", pc.FilterProperties)
	e.GET("/properties/featured-locations", pc.GetFeaturedLocations)
	e.GET("/properties/:id", pc.GetProperty)
	e.POST("/properties", pc.CreateProperty)
	e.DELETE("/properties/:id", pc.DeleteProperty)
	return e
}

func TestPropertyReads(t *testing.T) {
	svc := &stubProperties{}
	e := propertyServer(svc)

	rec := do(e, http.MethodGet, "/properties?page=2&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, properties.Page{Page: 2, Limit: 5}, svc.page)

	rec = do(e, http.MethodGet, "/properties?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "page must be a number", errorBody(t, rec))

	rec = do(e, http.MethodGet, "/properties/filter?city=Pune&maxPrice=5000000&bhk=2&sort=price_asc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pune", svc.filter.City)
	require.NotNil(t, svc.filter.MaxPrice)
	assert.Equal(t, 5000000.0, *svc.filter.MaxPrice)
	assert.Nil(t, svc.filter.MinPrice)
	require.NotNil(t, svc.filter.BHK)
	assert.Equal(t, 2, *svc.filter.BHK)
	assert.Equal(t, "price_asc", svc.filter.Sort)

	rec = do(e, http.MethodGet, "/properties/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/properties/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Property not found", errorBody(t, rec))

	rec = do(e, http.MethodGet, "/properties/featured-locations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"manual":[{"title":"Bandra","count":2,"image":""}],"cities":[]}`, rec.Body.String())
}

func multipartBody(t *testing.T, fields map[string]string, field, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if field != "" {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreatePropertyMultipart(t *testing.T) {
	svc := &stubProperties{}
	e := propertyServer(svc)

	body, ct := multipartBody(t, map[string]string{
		"title":                 "Sea View",
		"price":                 "4500000",
		"featuredLocationTitle": "  Bandra ",
	}, "images", "front.jpg", "image/jpeg")
	req := httptest.NewRequest(http.MethodPost, "/properties", body)
	req.Header.Set(echo.HeaderContentType, ct)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Sea View", svc.input.Title)
	assert.Equal(t, "4500000", svc.input.Price)
	assert.Equal(t, "Bandra", svc.input.FeaturedLocationTitle)
	require.Len(t, svc.input.Images, 1)
	assert.Equal(t, "front.jpg", svc.input.Images[0].Filename)

	rc, err := svc.input.Images[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
}

func TestCreatePropertyRejectsWrongMediaType(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		ct      string
		message string
	}{
		{"video in images", "images", "video/mp4", "Only image files are allowed for images"},
		{"image in videos", "videos", "image/png", "Only video files are allowed for videos"},
		{"unknown field", "brochure", "application/pdf", "Invalid fieldname brochure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubProperties{}
			e := propertyServer(svc)
			body, ct := multipartBody(t, map[string]string{"title": "x"}, tt.field, "f.bin", tt.ct)
			req := httptest.NewRequest(http.MethodPost, "/properties", body)
			req.Header.Set(echo.HeaderContentType, ct)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
			assert.Empty(t, svc.input.Title)
		})
	}
}

func TestDeleteProperty(t *testing.T) {
	svc := &stubProperties{}
	e := propertyServer(svc)
	id := primitive.NewObjectID().Hex()

	rec := do(e, http.MethodDelete, "/properties/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.deleted)
	assert.Contains(t, rec.Body.String(), "Property deleted successfully")
}

type stubEnquiries struct {
	EnquiryService
	submitted models.EnquiryRequest
	status    string
	noteBy    primitive.ObjectID
	note      string
}

func (s *stubEnquiries) Submit(_ context.Context, req models.EnquiryRequest) (*models.Enquiry, error) {
	if req.Phone == "123" {
		return nil, apperr.Validation("Please provide a valid 10-digit phone number")
	}
	s.submitted = req
	return &models.Enquiry{Name: req.Name, Status: models.EnquiryPending}, nil
}

func (s *stubEnquiries) List(_ context.Context, status string) (*models.EnquiryList, error) {
	s.status = status
	return &models.EnquiryList{}, nil
}

func (s *stubEnquiries) UpdateStatus(_ context.Context, id, status string) (*models.Enquiry, error) {
	s.status = status
	return &models.Enquiry{Status: status}, nil
}

func (s *stubEnquiries) AddNote(_ context.Context, id string, adminID primitive.ObjectID, text string) (*models.Enquiry, error) {
	s.noteBy, s.note = adminID, text
	return &models.Enquiry{}, nil
}

func TestEnquiryHandlers(t *testing.T) {
	svc := &stubEnquiries{}
	ec := NewEnquiryController(svc, discard)
	adminID := primitive.NewObjectID()
	asAdmin := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextAdminID, adminID)
			return next(c)
		}
	}

	e := newEcho()
	e.POST("/enquiries", ec.CreateEnquiry)
	e.GET("/enquiries", ec.ListEnquiries)
	e.PATCH("/enquiries/:id/status", ec.UpdateEnquiryStatus)
	e.POST("/enquiries/:id/notes", ec.AddEnquiryNote, asAdmin)

	rec := do(e, http.MethodPost, "/enquiries", `{"name":"Asha","email":"asha@example.com","phone":"9876543210","message":"Call me"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Asha", svc.submitted.Name)

	rec = do(e, http.MethodPost, "/enquiries", `{"name":"Asha","phone":"123"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide a valid 10-digit phone number", errorBody(t, rec))

	rec = do(e, http.MethodPost, "/enquiries", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorBody(t, rec))

	rec = do(e, http.MethodGet, "/enquiries?status=handled", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "handled", svc.status)

	id := primitive.NewObjectID().Hex()
	rec = do(e, http.MethodPatch, "/enquiries/"+id+"/status", `{"status":"closed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPatch, "/enquiries/"+id+"/status", `{"status":"handled"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.EnquiryHandled, svc.status)

	rec = do(e, http.MethodPost, "/enquiries/"+id+"/notes", `{"text":"called back"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, adminID, svc.noteBy)
	assert.Equal(t, "called back", svc.note)
}

type stubTracker struct {
	propertyID string
	visitor    analytics.Visitor
	criteria   analytics.FilterCriteria
}

func (s *stubTracker) TrackView(_ context.Context, id string, v analytics.Visitor) (*models.AnalyticsEvent, error) {
	s.propertyID, s.visitor = id, v
	return &models.AnalyticsEvent{EventType: models.EventView}, nil
}

func (s *stubTracker) TrackClick(_ context.Context, id string, v analytics.Visitor) (*models.AnalyticsEvent, error) {
	s.propertyID, s.visitor = id, v
	return nil, apperr.NotFound("Property")
}

func (s *stubTracker) TrackFilter(_ context.Context, f analytics.FilterCriteria, v analytics.Visitor) (*models.AnalyticsEvent, error) {
	s.criteria, s.visitor = f, v
	return &models.AnalyticsEvent{EventType: models.EventFilter}, nil
}

type stubReports struct {
	Reports
	eventType string
	limit     int
	days      int
}

func (s *stubReports) TopProperties(_ context.Context, eventType string, limit int) ([]models.TopProperty, error) {
	s.eventType, s.limit = eventType, limit
	return []models.TopProperty{}, nil
}

func (s *stubReports) Engagement(_ context.Context, days int) ([]models.EngagementDay, error) {
	s.days = days
	if days > 365 {
		return nil, apperr.Validation("days must be between 1 and 365")
	}
	return []models.EngagementDay{}, nil
}

func TestAnalyticsHandlers(t *testing.T) {
	tracker, reports := &stubTracker{}, &stubReports{}
	ac := NewAnalyticsController(tracker, reports, discard)
	e := newEcho()
	e.POST("/view", ac.TrackView)
	e.POST("/click", ac.TrackClick)
	e.POST("/filter", ac.TrackFilter)
	e.GET("/top-properties", ac.TopProperties)
	e.GET("/engagement", ac.Engagement)

	req := httptest.NewRequest(http.MethodPost, "/view", strings.NewReader(`{"propertyId":"abc","sessionId":"s1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "abc", tracker.propertyID)
	assert.Equal(t, analytics.Visitor{SessionID: "s1", IP: "203.0.113.9", UserAgent: "test-agent"}, tracker.visitor)

	rec = do(e, http.MethodPost, "/click", `{"propertyId":"abc"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/filter", `{"city":"Pune","priceRange":{"min":100,"max":5000000},"bhk":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, tracker.criteria.City)
	assert.Equal(t, "Pune", *tracker.criteria.City)
	require.NotNil(t, tracker.criteria.MaxPrice)
	assert.Equal(t, 5000000.0, *tracker.criteria.MaxPrice)
	require.NotNil(t, tracker.criteria.BHK)
	assert.Equal(t, 3, *tracker.criteria.BHK)

	rec = do(e, http.MethodGet, "/top-properties?eventType=click&limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "click", reports.eventType)
	assert.Equal(t, 5, reports.limit)

	rec = do(e, http.MethodGet, "/engagement?days=400", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(e, http.MethodGet, "/engagement?days=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "days must be a number", errorBody(t, rec))
}

type stubBot struct{ req chatbot.Request }

func (s *stubBot) Reply(_ context.Context, req chatbot.Request) (*chatbot.Response, error) {
	s.req = req
	if strings.TrimSpace(req.Message) == "" {
		return nil, apperr.Validation("Message is required")
	}
	return &chatbot.Response{Reply: "Hello!", Status: chatbot.StatusNoResults, Properties: []models.Property{}}, nil
}

func TestChatbotSendMessage(t *testing.T) {
	bot := &stubBot{}
	e := newEcho()
	e.POST("/chat", NewChatbotController(bot, discard).SendMessage)

	rec := do(e, http.MethodPost, "/chat", `{"message":"hi","conversationHistory":[{"type":"user","text":"earlier"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", bot.req.Message)
	require.Len(t, bot.req.History, 1)
	assert.Contains(t, rec.Body.String(), `"reply":"Hello!"`)

	rec = do(e, http.MethodPost, "/chat", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubStats struct{ err error }

func (s stubStats) Stats(context.Context) (*models.DashboardStats, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.DashboardStats{}, nil
}

func TestDashboardStats(t *testing.T) {
	e := newEcho()
	e.GET("/ok", NewDashboardController(stubStats{}, discard).GetStats)
	e.GET("/fail", NewDashboardController(stubStats{err: errors.New("mongo down")}, discard).GetStats)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/ok", "").Code)
	rec := do(e, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", errorBody(t, rec))
}

type memAdmins struct{ byEmail map[string]*models.Admin }

func (m *memAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	a, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.NotFound("Admin")
	}
	cp := *a
	return &cp, nil
}

func (m *memAdmins) Get(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	for _, a := range m.byEmail {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("Admin")
}

func TestAdminLoginAndProfile(t *testing.T) {
	hash, err := utils.HashPassword("s3cret!")
	require.NoError(t, err)
	active := &models.Admin{ID: primitive.NewObjectID(), Email: "admin@hitech.in", Password: hash, Role: middleware.RoleAdmin, IsActive: true}
	inactive := &models.Admin{ID: primitive.NewObjectID(), Email: "old@hitech.in", Password: hash, Role: middleware.RoleAdmin}
	admins := &memAdmins{byEmail: map[string]*models.Admin{active.Email: active, inactive.Email: inactive}}

	issuer := utils.NewTokenIssuer(config.AuthConfig{JWTSecret: "secret"})
	ac := NewAdminController(admins, issuer, discard)
	e := newEcho()
	e.POST("/login", ac.Login)
	e.GET("/profile", ac.GetProfile, middleware.JWTMiddleware(issuer))

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"missing password", `{"email":"admin@hitech.in"}`, http.StatusBadRequest, "password is required"},
		{"unknown email", `{"email":"who@hitech.in","password":"s3cret!"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"wrong password", `{"email":"admin@hitech.in","password":"nope"}`, http.StatusUnauthorized, "Invalid email or password"},
		{"inactive", `{"email":"old@hitech.in","password":"s3cret!"}`, http.StatusUnauthorized, "Account is deactivated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, errorBody(t, rec))
		})
	}

	rec := do(e, http.MethodPost, "/login", `{"email":"Admin@HiTech.in","password":"s3cret!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.NotEmpty(t, login.Token)
	assert.Empty(t, login.Admin.Password)
	assert.Equal(t, active.ID, login.Admin.ID)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"admin@hitech.in"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestHealthCheck(t *testing.T) {
	e := echo.New()
	e.GET("/up", NewHealthController(func(context.Context) error { return nil }).HealthCheck)
	e.GET("/down", NewHealthController(func(context.Context) error { return errors.New("no server") }).HealthCheck)

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/up", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, http.MethodGet, "/down", "").Code)
}
