package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/launchbase/launchbase-api/internal/models"
)

// SQLiteProductRepository implements ProductRepository using SQLite.
type SQLiteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository creates a new SQLite product repository.
func NewSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{db: db}
}

// Upsert inserts or updates a product keyed by Stripe product ID.
// created_at is preserved on conflict; all mutable fields are overwritten.
func (r *SQLiteProductRepository) Upsert(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, description, active, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			active = excluded.active,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		boolToInt(product.Active),
		marshalMetadata(product.Metadata),
		formatTime(product.CreatedAt),
		formatTime(product.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// GetByID retrieves a product by ID. Returns nil if not found.
func (r *SQLiteProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, description, active, metadata, created_at, updated_at
		FROM products
		WHERE id = ?
	`

	var product models.Product
	var description sql.NullString
	var active int
	var metadata sql.NullString
	var createdAt, updatedAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID, &product.Name, &description, &active, &metadata, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product.Description = description.String
	product.Active = active != 0
	product.Metadata = unmarshalMetadata(metadata)
	product.CreatedAt = parseTime(createdAt)
	product.UpdatedAt = parseTime(updatedAt)

	return &product, nil
}

// ListActive returns all active products ordered by name.
func (r *SQLiteProductRepository) ListActive(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT id, name, description, active, metadata, created_at, updated_at
		FROM products
		WHERE active = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var product models.Product
		var description sql.NullString
		var active int
		var metadata sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&product.ID, &product.Name, &description, &active, &metadata, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}

		product.Description = description.String
		product.Active = active != 0
		product.Metadata = unmarshalMetadata(metadata)
		product.CreatedAt = parseTime(createdAt)
		product.UpdatedAt = parseTime(updatedAt)

		products = append(products, &product)
	}

	return products, rows.Err()
}

// SQLitePriceRepository implements PriceRepository using SQLite.
type SQLitePriceRepository struct {
	db *sql.DB
}

// NewSQLitePriceRepository creates a new SQLite price repository.
func NewSQLitePriceRepository(db *sql.DB) *SQLitePriceRepository {
	return &SQLitePriceRepository{db: db}
}

// Upsert inserts or updates a price keyed by Stripe price ID.
// Fails with a foreign key violation if the parent product is absent.
func (r *SQLitePriceRepository) Upsert(ctx context.Context, price *models.Price) error {
	query := `
		INSERT INTO prices (id, product_id, active, currency, unit_amount, interval,
			interval_count, trial_period_days, type, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			product_id = excluded.product_id,
			active = excluded.active,
			currency = excluded.currency,
			unit_amount = excluded.unit_amount,
			interval = excluded.interval,
			interval_count = excluded.interval_count,
			trial_period_days = excluded.trial_period_days,
			type = excluded.type,
			metadata = excluded.metadata
	`

	_, err := r.db.ExecContext(ctx, query,
		price.ID,
		price.ProductID,
		boolToInt(price.Active),
		price.Currency,
		price.UnitAmount,
		price.Interval,
		price.IntervalCount,
		price.TrialPeriodDays,
		string(price.Type),
		marshalMetadata(price.Metadata),
		formatTime(price.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}

	return nil
}

// GetByID retrieves a price by ID. Returns nil if not found.
func (r *SQLitePriceRepository) GetByID(ctx context.Context, id string) (*models.Price, error) {
	query := `
		SELECT id, product_id, active, currency, unit_amount, interval,
			interval_count, trial_period_days, type, metadata, created_at
		FROM prices
		WHERE id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get price: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}

	return scanPrice(rows)
}

// ListActiveByProduct returns all active prices for a product ordered by amount.
func (r *SQLitePriceRepository) ListActiveByProduct(ctx context.Context, productID string) ([]*models.Price, error) {
	query := `
		SELECT id, product_id, active, currency, unit_amount, interval,
			interval_count, trial_period_days, type, metadata, created_at
		FROM prices
		WHERE product_id = ? AND active = 1
		ORDER BY unit_amount
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prices: %w", err)
	}
	defer rows.Close()

	var prices []*models.Price
	for rows.Next() {
		price, err := scanPrice(rows)
		if err != nil {
			return nil, err
		}
		prices = append(prices, price)
	}

	return prices, rows.Err()
}

func scanPrice(rows *sql.Rows) (*models.Price, error) {
	var price models.Price
	var active int
	var unitAmount, intervalCount, trialPeriodDays sql.NullInt64
	var interval, metadata sql.NullString
	var priceType, createdAt string

	err := rows.Scan(&price.ID, &price.ProductID, &active, &price.Currency,
		&unitAmount, &interval, &intervalCount, &trialPeriodDays,
		&priceType, &metadata, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan price: %w", err)
	}

	price.Active = active != 0
	if unitAmount.Valid {
		price.UnitAmount = &unitAmount.Int64
	}
	if interval.Valid {
		price.Interval = &interval.String
	}
	if intervalCount.Valid {
		price.IntervalCount = &intervalCount.Int64
	}
	if trialPeriodDays.Valid {
		price.TrialPeriodDays = &trialPeriodDays.Int64
	}
	price.Type = models.PriceType(priceType)
	price.Metadata = unmarshalMetadata(metadata)
	price.CreatedAt = parseTime(createdAt)

	return &price, nil
}
