package plans

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"farewell-backend/internal/shared/server/middleware"
	"farewell-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plans/active", h.active)
	rg.GET("/plans/active/payload", h.payload)
	rg.GET("/plans/active/completion", h.completion)
	rg.PUT("/plans/active/sections/:section", h.updateSection)
	rg.POST("/plans/active/sections/:section/clear", h.clearSection)
	rg.GET("/plans/candidates", h.candidates)
}

func (h *Handler) active(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	create, _ := strconv.ParseBool(c.DefaultQuery("create", "false"))

	res := h.Svc.ActivePlan(c.Request.Context(), userID, create)
	if res.Plan == nil {
		respond.JSON(c, http.StatusOK, gin.H{"plan": nil})
		return
	}
	c.Set("planId", res.Plan.ID)
	respond.JSON(c, http.StatusOK, gin.H{
		"plan":    planView(*res.Plan),
		"org":     res.Org,
		"created": res.Created,
	})
}

func (h *Handler) payload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	payload, err := h.Svc.NormalizedPayload(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActivePlan) {
			respond.JSON(c, http.StatusOK, gin.H{"payload": nil})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load plan payload", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"payload": payload})
}

func (h *Handler) completion(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	completion, err := h.Svc.Completion(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActivePlan) {
			empty := make(map[string]bool, len(CompletionSections))
			for _, s := range CompletionSections {
				empty[s] = false
			}
			respond.JSON(c, http.StatusOK, gin.H{"sections": empty})
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute completion", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"sections": completion})
}

func (h *Handler) updateSection(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	section := c.Param("section")

	var input any
	if err := c.ShouldBindJSON(&input); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "body must be valid JSON", nil)
		return
	}

	plan, err := h.Svc.UpdateSection(c.Request.Context(), userID, section, input)
	if err != nil {
		if errors.Is(err, ErrNoActivePlan) {
			respond.Error(c, http.StatusConflict, "no_active_plan", "could not resolve or create a plan", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to update section", nil)
		return
	}
	c.Set("planId", plan.ID)
	respond.JSON(c, http.StatusOK, gin.H{
		"plan":    planView(plan),
		"section": SectionPayloadKey(section),
	})
}

func (h *Handler) clearSection(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	section := c.Param("section")

	plan, err := h.Svc.ClearSection(c.Request.Context(), userID, section)
	if err != nil {
		if errors.Is(err, ErrNoActivePlan) {
			respond.Error(c, http.StatusNotFound, "no_active_plan", "no plan to clear", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear section", nil)
		return
	}
	c.Set("planId", plan.ID)
	respond.JSON(c, http.StatusOK, gin.H{
		"plan":    planView(plan),
		"section": SectionPayloadKey(section),
	})
}

func (h *Handler) candidates(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	scores, err := h.Svc.CandidateScores(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to score plans", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"candidates": scores})
}

// planView shapes a plan for API responses. The raw payload stays internal;
// clients read the normalized form from /plans/active/payload.
func planView(plan Plan) gin.H {
	return gin.H{
		"id":        plan.ID,
		"orgId":     plan.OrgID,
		"ownerId":   plan.OwnerUserID,
		"profile":   plan.Profile,
		"createdAt": plan.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": plan.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
