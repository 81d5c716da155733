package dto

import "time"

type OrganizationResponse struct {
	NgoID             string     `json:"ngo_id"`
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	Latitude          float64    `json:"latitude"`
	Longitude         float64    `json:"longitude"`
	LastDonationDate  *time.Time `json:"last_donation_date"`
	AcceptedFoodTypes []string   `json:"accepted_food_types"`
	CapacityMin       float64    `json:"capacity_min"`
	CapacityMax       float64    `json:"capacity_max"`
	UrgencyPreference bool       `json:"urgency_preference"`
	CurrentNeeds      []string   `json:"current_needs"`
}

type ListOrganizationsResponse struct {
	Organizations []OrganizationResponse `json:"organizations"`
	LoadedAt      *time.Time             `json:"loaded_at"`
}

type HealthResponse struct {
	Status        string     `json:"status"`
	Organizations int        `json:"organizations"`
	LoadedAt      *time.Time `json:"loaded_at"`
}

type ReloadResponse struct {
	Organizations int       `json:"organizations"`
	LoadedAt      time.Time `json:"loaded_at"`
}
