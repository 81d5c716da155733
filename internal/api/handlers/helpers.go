package handlers

import (
	"donation-matching-service/internal/api/dto"
	"donation-matching-service/internal/domain"
	"donation-matching-service/internal/platform/obs"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func writeJSON(logger logrus.FieldLogger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"req_id": obs.RequestID(r.Context()),
		}).WithError(err).Error("encode response failed")
	}
}

func writeError(logger logrus.FieldLogger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(logger, w, r, status, map[string]string{"error": msg})
}

// NotFound and MethodNotAllowed keep router errors in the JSON error shape.
func NotFound(logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(logger, w, r, http.StatusNotFound, "not found")
	}
}

func MethodNotAllowed(logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(logger, w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func organizationResponse(o *domain.Organization) dto.OrganizationResponse {
	res := dto.OrganizationResponse{
		NgoID:             o.ID,
		Name:              o.Name,
		Address:           o.Address,
		LastDonationDate:  o.LastDonationAt,
		AcceptedFoodTypes: o.AcceptedFoodTypes,
		CapacityMin:       o.CapacityMin,
		CapacityMax:       o.CapacityMax,
		UrgencyPreference: o.UrgencyPreference,
		CurrentNeeds:      o.CurrentNeeds,
	}
	if o.Location != nil {
		res.Latitude = o.Location.Lat
		res.Longitude = o.Location.Lon
	}
	return res
}
