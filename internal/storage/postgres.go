package storage

import (
	"context"
	"fmt"
	"time"

	"doorstep/internal/config"
	"doorstep/internal/pricing"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// CatalogStorage reads the pricing tables from Postgres. It never writes.
type CatalogStorage struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type serviceRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Subtitle    string `db:"subtitle"`
	VehicleType string `db:"vehicle_type"`
	Category    string `db:"category"`
	MinPrice    int64  `db:"min_price"`
	MaxPrice    int64  `db:"max_price"`
	Duration    string `db:"duration"`
	Popular     bool   `db:"popular"`
}

type addonRow struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	MinPrice    int64  `db:"min_price"`
	MaxPrice    int64  `db:"max_price"`
}

type cityRow struct {
	City          string `db:"city"`
	MultiplierPct int    `db:"multiplier_pct"`
}

func NewCatalogStorage(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*CatalogStorage, error) {
	const operation = "storage.NewCatalogStorage"

	var db *sqlx.DB

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 2 * time.Minute
	retryPolicy.MaxInterval = 15 * time.Second

	logger.Info("Connecting to PostgreSQL...",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name))

	err := backoff.RetryNotify(
		func() error {
			conn, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			db = conn
			return nil
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			logger.Warn("PostgreSQL connection failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect after retries: %w", operation, err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	logger.Info("Successfully connected to PostgreSQL")
	return &CatalogStorage{db: db, logger: logger}, nil
}

// Migrate applies the embedded catalog migrations.
func (s *CatalogStorage) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.db.DB, s.logger)
}

// LoadCatalog reads every active service, add-on and city multiplier. The
// result is validated; a bad row fails the whole load.
func (s *CatalogStorage) LoadCatalog(ctx context.Context) (pricing.Catalog, error) {
	const (
		servicesQuery = `
			SELECT id, title, subtitle, vehicle_type, category, min_price, max_price, duration, popular
			FROM services
			WHERE active
			ORDER BY sort_order, id`
		addonsQuery = `
			SELECT id, title, description, min_price, max_price
			FROM addons
			WHERE active
			ORDER BY sort_order, id`
		citiesQuery = `SELECT city, multiplier_pct FROM city_multipliers`
	)

	var services []serviceRow
	if err := s.db.SelectContext(ctx, &services, servicesQuery); err != nil {
		return pricing.Catalog{}, fmt.Errorf("failed to load services: %w", err)
	}

	var addons []addonRow
	if err := s.db.SelectContext(ctx, &addons, addonsQuery); err != nil {
		return pricing.Catalog{}, fmt.Errorf("failed to load addons: %w", err)
	}

	var cities []cityRow
	if err := s.db.SelectContext(ctx, &cities, citiesQuery); err != nil {
		return pricing.Catalog{}, fmt.Errorf("failed to load cities: %w", err)
	}

	catalog := rowsToCatalog(services, addons, cities)
	if err := catalog.Validate(); err != nil {
		return pricing.Catalog{}, fmt.Errorf("catalog in database is invalid: %w", err)
	}

	s.logger.Info("Catalog loaded from PostgreSQL",
		zap.Int("services", len(catalog.Services)),
		zap.Int("addons", len(catalog.Addons)),
		zap.Int("cities", len(catalog.Cities)))

	return catalog, nil
}

func (s *CatalogStorage) Close() error {
	return s.db.Close()
}

func rowsToCatalog(services []serviceRow, addons []addonRow, cities []cityRow) pricing.Catalog {
	c := pricing.Catalog{
		Services: make([]pricing.Service, 0, len(services)),
		Addons:   make([]pricing.Addon, 0, len(addons)),
		Cities:   make(map[pricing.City]int, len(cities)),
	}

	for _, r := range services {
		c.Services = append(c.Services, pricing.Service{
			ID:          r.ID,
			Title:       r.Title,
			Subtitle:    r.Subtitle,
			PriceRange:  pricing.PriceRange{Min: r.MinPrice, Max: r.MaxPrice},
			VehicleType: pricing.VehicleType(r.VehicleType),
			Category:    pricing.Category(r.Category),
			Duration:    r.Duration,
			Popular:     r.Popular,
		})
	}
	for _, r := range addons {
		c.Addons = append(c.Addons, pricing.Addon{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			PriceRange:  pricing.PriceRange{Min: r.MinPrice, Max: r.MaxPrice},
		})
	}
	for _, r := range cities {
		c.Cities[pricing.City(r.City)] = r.MultiplierPct
	}

	return c
}
