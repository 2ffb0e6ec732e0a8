package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/middleware"
	"github.com/visheshsingal/hitech/models"
)

type EnquiryService interface {
	Submit(ctx context.Context, req models.EnquiryRequest) (*models.Enquiry, error)
	List(ctx context.Context, status string) (*models.EnquiryList, error)
	Recent(ctx context.Context) ([]models.Enquiry, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Enquiry, error)
	AddNote(ctx context.Context, id string, adminID primitive.ObjectID, text string) (*models.Enquiry, error)
	Delete(ctx context.Context, id string) error
}

type EnquiryController struct {
	svc EnquiryService
	log *slog.Logger
}

func NewEnquiryController(svc EnquiryService, log *slog.Logger) *EnquiryController {
	return &EnquiryController{svc: svc, log: log}
}

func (ec *EnquiryController) CreateEnquiry(c echo.Context) error {
	var req models.EnquiryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	enquiry, err := ec.svc.Submit(c.Request().Context(), req)
	if err != nil {
		return respondError(c, ec.log, err)
	}
	return c.JSON(http.StatusCreated, enquiry)
}

func (ec *EnquiryController) ListEnquiries(c echo.Context) error {
	list, err := ec.svc.List(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, ec.log, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (ec *EnquiryController) RecentEnquiries(c echo.Context) error {
	recent, err := ec.svc.Recent(c.Request().Context())
	if err != nil {
		return respondError(c, ec.log, err)
	}
	return c.JSON(http.StatusOK, recent)
}

func (ec *EnquiryController) UpdateEnquiryStatus(c echo.Context) error {
	var req models.EnquiryStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, ec.log, err)
	}
	enquiry, err := ec.svc.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return respondError(c, ec.log, err)
	}
	return c.JSON(http.StatusOK, enquiry)
}

func (ec *EnquiryController) AddEnquiryNote(c echo.Context) error {
	adminID, _ := c.Get(middleware.ContextAdminID).(primitive.ObjectID)
	var req models.EnquiryNoteRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	enquiry, err := ec.svc.AddNote(c.Request().Context(), c.Param("id"), adminID, req.Text)
	if err != nil {
		return respondError(c, ec.log, err)
	}
	return c.JSON(http.StatusOK, enquiry)
}

func (ec *EnquiryController) DeleteEnquiry(c echo.Context) error {
	id := c.Param("id")
	if err := ec.svc.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, ec.log, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Enquiry deleted successfully", "id": id})
}
