package model

import "time"

// Document represents a saved text owned by an account.
// Saving a document is a metered action (see rules.Pricing.SaveDocumentCost).
type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
