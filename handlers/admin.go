package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/visheshsingal/hitech/apperr"
	"github.com/visheshsingal/hitech/middleware"
	"github.com/visheshsingal/hitech/models"
	"github.com/visheshsingal/hitech/utils"
)

type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
}

type AdminController struct {
	admins AdminStore
	issuer *utils.TokenIssuer
	log    *slog.Logger
}

func NewAdminController(admins AdminStore, issuer *utils.TokenIssuer, log *slog.Logger) *AdminController {
	return &AdminController{admins: admins, issuer: issuer, log: log}
}

func (ac *AdminController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, ac.log, err)
	}

	admin, err := ac.admins.FindByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		}
		return respondError(c, ac.log, err)
	}

	if !admin.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Account is deactivated"})
	}

	if !utils.CheckPassword(admin.Password, req.Password) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
	}

	token, err := ac.issuer.GenerateJWT(admin)
	if err != nil {
		ac.log.Error("failed to generate token", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate token"})
	}

	admin.Password = ""
	ac.log.Info("admin logged in", "admin_id", admin.ID.Hex())
	return c.JSON(http.StatusOK, models.LoginResponse{Token: token, Admin: *admin})
}

func (ac *AdminController) GetProfile(c echo.Context) error {
	adminID, _ := c.Get(middleware.ContextAdminID).(primitive.ObjectID)

	admin, err := ac.admins.Get(c.Request().Context(), adminID)
	if err != nil {
		return respondError(c, ac.log, err)
	}

	admin.Password = ""
	return c.JSON(http.StatusOK, admin)
}
