package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkart/storefront/internal/domain/settings"
)

const (
	getSettingsSQL = `SELECT id, version, header_title, header_bg_color,
			company_logo_url, delivery_image_url, banners, advertisement_video_url,
			whatsapp_number, updated_at
		FROM settings WHERE id = $1`

	replaceSettingsSQL = `INSERT INTO settings (id, version, header_title, header_bg_color,
			company_logo_url, delivery_image_url, banners, advertisement_video_url,
			whatsapp_number, updated_at)
		VALUES ($1, $2 + 1, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO UPDATE SET
			version = settings.version + 1,
			header_title = EXCLUDED.header_title,
			header_bg_color = EXCLUDED.header_bg_color,
			company_logo_url = EXCLUDED.company_logo_url,
			delivery_image_url = EXCLUDED.delivery_image_url,
			banners = EXCLUDED.banners,
			advertisement_video_url = EXCLUDED.advertisement_video_url,
			whatsapp_number = EXCLUDED.whatsapp_number,
			updated_at = now()
		WHERE settings.version = $2
		RETURNING version, updated_at`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
// The optimistic version check runs inside the upsert, so concurrent saves
// never interleave.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the current settings, or the defaults when none were saved yet.
func (r *SettingsRepository) Get(ctx context.Context) (*settings.Settings, error) {
	var s settings.Settings
	err := r.pool.QueryRow(ctx, getSettingsSQL, settings.SingletonID).Scan(
		&s.ID, &s.Version, &s.HeaderTitle, &s.HeaderBgColor,
		&s.CompanyLogoURL, &s.DeliveryImageURL, &s.Banners, &s.AdvertisementVideoURL,
		&s.WhatsappNumber, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings.Defaults(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting settings: %w", err)
	}
	return &s, nil
}

// Replace atomically swaps the settings record when s.Version is still
// current, bumping the stored version.
func (r *SettingsRepository) Replace(ctx context.Context, s *settings.Settings) error {
	err := r.pool.QueryRow(ctx, replaceSettingsSQL,
		settings.SingletonID, s.Version, s.HeaderTitle, s.HeaderBgColor,
		s.CompanyLogoURL, s.DeliveryImageURL, s.Banners, s.AdvertisementVideoURL,
		s.WhatsappNumber,
	).Scan(&s.Version, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
