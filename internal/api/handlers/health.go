package handlers

import (
	"donation-matching-service/internal/api/dto"
	"donation-matching-service/internal/services"
	"net/http"

	"github.com/sirupsen/logrus"
)

type HealthHandler struct {
	Snapshots *services.SnapshotStore
	Logger    logrus.FieldLogger
}

// Health is a liveness check that also reports the loaded snapshot. Status
// is "degraded" while no organizations are available for matching.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := dto.HealthResponse{Status: "ok"}

	snap := h.Snapshots.Current()
	res.Organizations = snap.Size()
	if snap != nil {
		loadedAt := snap.LoadedAt
		res.LoadedAt = &loadedAt
	}
	if res.Organizations == 0 {
		res.Status = "degraded"
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}
