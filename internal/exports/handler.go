package exports

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"farewell-backend/internal/shared/server/middleware"
	"farewell-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/exports", h.create)
	rg.GET("/exports", h.list)
	rg.GET("/exports/:id/download", h.download)
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	export, err := h.Svc.Create(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrLimitReached):
			respond.Error(c, http.StatusPaymentRequired, "limit_reached", "export limit reached for this period", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no plan to export", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create export", nil)
		}
		return
	}

	c.Set("exportId", export.ID)
	c.Set("planId", export.PlanID)
	respond.JSON(c, http.StatusCreated, toResponse(export))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list exports", nil)
		return
	}

	out := make([]gin.H, 0, len(items))
	for _, export := range items {
		out = append(out, toResponse(export))
	}
	respond.JSON(c, http.StatusOK, gin.H{"exports": out})
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	exportID := c.Param("id")

	export, reader, err := h.Svc.Open(c.Request.Context(), userID, exportID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open export", nil)
		}
		return
	}
	defer reader.Close()

	fileName := "plan_export_" + export.CreatedAt.UTC().Format("20060102") + ".json"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.DataFromReader(http.StatusOK, export.SizeBytes, export.MimeType, reader, nil)
}

func toResponse(export Export) gin.H {
	return gin.H{
		"id":        export.ID,
		"planId":    export.PlanID,
		"mimeType":  export.MimeType,
		"sizeBytes": export.SizeBytes,
		"createdAt": export.CreatedAt.UTC().Format(time.RFC3339),
	}
}
