// Package settings models the site-wide storefront configuration (header,
// banners, logo, contact details) as a single versioned record.
//
// The record is replaced atomically: every save carries the version it was
// loaded at, and the store only applies the replacement when that version is
// still current. Concurrent admin sessions therefore fail loudly instead of
// silently overwriting each other field by field.
package settings

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// SingletonID is the fixed row ID of the settings record.
const SingletonID = "00000000-0000-0000-0000-000000000001"

// ErrVersionConflict is returned when a replacement was based on a stale
// version. The caller should reload and re-apply.
var ErrVersionConflict = errors.New("settings were modified by another session")

// Settings is the complete site configuration.
type Settings struct {
	ID      string
	Version int

	HeaderTitle   string
	HeaderBgColor string

	CompanyLogoURL        string
	DeliveryImageURL      string
	Banners               []string
	AdvertisementVideoURL string

	WhatsappNumber string

	UpdatedAt time.Time
}

// Defaults returns the configuration used before any admin has saved one.
func Defaults() *Settings {
	return &Settings{
		ID:            SingletonID,
		HeaderBgColor: "#1D4ED8",
	}
}

// Repository defines persistence for the settings singleton.
type Repository interface {
	// Get returns the current settings, or Defaults when none were saved yet.
	Get(ctx context.Context) (*Settings, error)
	// Replace atomically swaps the record if s.Version is still current,
	// bumping the version. Returns ErrVersionConflict otherwise.
	Replace(ctx context.Context, s *Settings) error
}

// RemoveBanner returns the banner list without the given URL. Removing an
// unknown URL is a no-op.
func RemoveBanner(banners []string, url string) []string {
	out := make([]string, 0, len(banners))
	for _, b := range banners {
		if b != url {
			out = append(out, b)
		}
	}
	return out
}
