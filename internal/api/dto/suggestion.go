package dto

type SuggestionRequest struct {
	DonorAddress string   `json:"donor_address"`
	FoodType     string   `json:"food_type"`
	Quantity     *float64 `json:"quantity"`
	ExpiryDate   string   `json:"expiry_date"`
}

type CandidateResponse struct {
	NgoID      string  `json:"ngo_id"`
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	DistanceKm float64 `json:"distance_km"`
	MatchScore float64 `json:"match_score"`
}

type SuggestionResponse struct {
	Ngos    []CandidateResponse `json:"ngos"`
	Message string              `json:"message,omitempty"`
}
