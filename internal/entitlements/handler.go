package entitlements

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"farewell-backend/internal/shared/server/middleware"
	"farewell-backend/internal/shared/server/respond"
)

// Handler exposes entitlement endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches entitlement routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/entitlements", h.getEntitlements)
}

// RegisterDevRoutes attaches dev-only entitlement routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/entitlements/reset", h.resetEntitlements)
}

func (h *Handler) getEntitlements(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	e, err := h.Svc.EnsurePeriod(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch entitlements", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"tier":     e.Tier,
		"limit":    e.Limit,
		"used":     e.Used,
		"resetsAt": e.ResetsAt,
	})
}

func (h *Handler) resetEntitlements(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	e, err := h.Svc.Reset(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset entitlements", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"tier":     e.Tier,
		"limit":    e.Limit,
		"used":     e.Used,
		"resetsAt": e.ResetsAt,
	})
}
