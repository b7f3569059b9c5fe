package handler

import (
	"net/http"

	"github.com/meowv/blog/internal/model"
	"github.com/meowv/blog/internal/service"
)

type AdminHandler struct {
	statsService   *service.StatsService
	cleanupService *service.CleanupService
}

func NewAdminHandler(statsService *service.StatsService, cleanupService *service.CleanupService) *AdminHandler {
	return &AdminHandler{statsService: statsService, cleanupService: cleanupService}
}

// DashboardStats returns content and user counts.
func (h *AdminHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.GetDashboardStats(r.Context())
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, stats)
}

// RunCleanup triggers an immediate purge and returns the result.
func (h *AdminHandler) RunCleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.cleanupService.RunNow(r.Context())
	if err != nil {
		model.ErrorResponse(w, err)
		return
	}
	model.JSON(w, http.StatusOK, result)
}
