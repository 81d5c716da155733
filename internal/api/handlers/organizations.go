package handlers

import (
	"donation-matching-service/internal/api/dto"
	"donation-matching-service/internal/platform/obs"
	"donation-matching-service/internal/services"
	"net/http"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

// OrganizationHandler exposes the loaded organization snapshot.
type OrganizationHandler struct {
	Snapshots *services.SnapshotStore
	Logger    logrus.FieldLogger
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	snap := h.Snapshots.Current()

	res := dto.ListOrganizationsResponse{
		Organizations: make([]dto.OrganizationResponse, 0, snap.Size()),
	}
	if snap != nil {
		loadedAt := snap.LoadedAt
		res.LoadedAt = &loadedAt
		for _, o := range snap.Organizations {
			res.Organizations = append(res.Organizations, organizationResponse(o))
		}
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}

func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := flow.Param(r.Context(), "id")

	if snap := h.Snapshots.Current(); snap != nil {
		for _, o := range snap.Organizations {
			if o.ID == id {
				writeJSON(h.Logger, w, r, http.StatusOK, organizationResponse(o))
				return
			}
		}
	}

	writeError(h.Logger, w, r, http.StatusNotFound, "organization not found")
}

// Reload re-reads the organization source and swaps the snapshot.
func (h *OrganizationHandler) Reload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Snapshots.Reload(r.Context())
	if err != nil {
		h.Logger.WithField("req_id", obs.RequestID(r.Context())).WithError(err).Error("reload organizations failed")
		writeError(h.Logger, w, r, http.StatusInternalServerError, "reload failed, previous organization data kept")
		return
	}

	writeJSON(h.Logger, w, r, http.StatusOK, dto.ReloadResponse{
		Organizations: snap.Size(),
		LoadedAt:      snap.LoadedAt,
	})
}
