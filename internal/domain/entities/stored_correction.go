package entities

import "time"

// StoredCorrection is a TimeCorrection persisted with its provenance.
type StoredCorrection struct {
	ID         string         `json:"id"`
	Correction TimeCorrection `json:"-"`
	Origin     string         `json:"origin"`
	CreatedAt  time.Time      `json:"created_at"`
}
