package handlers

import (
	"donation-matching-service/internal/api/dto"
	"donation-matching-service/internal/platform/obs"
	"donation-matching-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	maxBodyBytes     = 1 << 20
	noMatchesMessage = "No suitable NGOs found based on criteria."
)

type SuggestionHandler struct {
	Matcher *services.Matcher
	Logger  logrus.FieldLogger
}

// Suggest ranks organizations for one donation and returns the best few.
func (h *SuggestionHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req dto.SuggestionRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(h.Logger, w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if req.Quantity == nil {
		writeError(h.Logger, w, r, http.StatusBadRequest, "quantity is required")
		return
	}

	svcReq := services.SuggestRequest{
		DonorAddress: req.DonorAddress,
		FoodType:     req.FoodType,
		Quantity:     *req.Quantity,
		ExpiryDate:   req.ExpiryDate,
	}

	candidates, err := h.Matcher.Suggest(r.Context(), svcReq)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(h.Logger, w, r, http.StatusBadRequest, verr.Error())
		case errors.Is(err, services.ErrGeocodeFailed):
			writeError(h.Logger, w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNotReady):
			writeError(h.Logger, w, r, http.StatusServiceUnavailable, services.ErrNotReady.Error())
		default:
			h.Logger.WithField("req_id", obs.RequestID(r.Context())).WithError(err).Error("suggest failed")
			writeError(h.Logger, w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	res := dto.SuggestionResponse{Ngos: make([]dto.CandidateResponse, 0, len(candidates))}
	for _, c := range candidates {
		res.Ngos = append(res.Ngos, dto.CandidateResponse{
			NgoID:      c.OrganizationID,
			Name:       c.Name,
			Address:    c.Address,
			DistanceKm: c.DistanceKm,
			MatchScore: c.MatchScore,
		})
	}
	if len(res.Ngos) == 0 {
		res.Message = noMatchesMessage
	}

	writeJSON(h.Logger, w, r, http.StatusOK, res)
}
