package model

import "github.com/google/uuid"

// PaymentGateway describes an enabled third-party hosted payment provider.
// StoreSecret never leaves the server.
type PaymentGateway struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	LogoURL     string    `json:"logo_url"`
	StoreID     string    `json:"store_id"`
	StoreSecret string    `json:"-"`
	APIBaseURL  string    `json:"api_base_url"`
	Enabled     bool      `json:"enabled"`
}
