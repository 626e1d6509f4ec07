package domain

import (
	"errors"
	"time"
)

var (
	ErrCompanyNotFound     = errors.New("company not found")
	ErrCompanyExists       = errors.New("company with this siret already exists")
	ErrRegistryRateLimited = errors.New("company registry rate limit reached")
	ErrRegistryUnavailable = errors.New("company registry unavailable")
)

type Company struct {
	ID        string
	UserID    string
	SIRET     string
	SIREN     string
	Name      string
	Address   string
	TVA       string
	CreatedAt time.Time
	UpdatedAt time.Time
}
