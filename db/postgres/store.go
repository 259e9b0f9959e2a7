// Package postgres provides the Postgres-backed catalog store. Postgres is
// the platform's system of record for products, pricing records and size
// buckets; the pricing engine consumes it through catalog.Reader.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"decoration-cost/catalog"
)

// Store implements catalog.Reader plus the administrative writes the CLI
// seeding path uses.
type Store struct {
	db *sql.DB
}

// NewStore opens a connection pool against the given DSN and verifies it.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping checks connectivity, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS decoration_products (
    id                UUID PRIMARY KEY,
    name              TEXT NOT NULL,
    category_id       UUID NOT NULL,
    vendor_id         UUID NOT NULL,
    min_quantity      INT NOT NULL DEFAULT 1,
    setup_fee         NUMERIC(12,2),
    sample_fee        NUMERIC(12,2),
    edit_fee          NUMERIC(12,2),
    rush_fee          NUMERIC(12,2),
    per_unit_cost     NUMERIC(12,4),
    per_color_cost    NUMERIC(12,4),
    legacy_setup_cost NUMERIC(12,2),
    active            BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS size_buckets (
    id         UUID PRIMARY KEY,
    product_id UUID NOT NULL REFERENCES decoration_products(id),
    name       TEXT NOT NULL,
    method     TEXT NOT NULL,
    min_value  DOUBLE PRECISION,
    max_value  DOUBLE PRECISION,
    position   INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pricing_records (
    id             UUID PRIMARY KEY,
    product_id     UUID NOT NULL REFERENCES decoration_products(id),
    min_quantity   INT NOT NULL,
    max_quantity   INT,
    unit_price     NUMERIC(12,4) NOT NULL,
    size_bucket_id UUID REFERENCES size_buckets(id),
    color_count    INT,
    artwork_type   TEXT,
    variant_type   TEXT,
    active         BOOLEAN NOT NULL DEFAULT TRUE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_pricing_records_product
    ON pricing_records (product_id) WHERE active;
CREATE INDEX IF NOT EXISTS idx_size_buckets_product
    ON size_buckets (product_id);
`

// EnsureSchema creates the catalog tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}
	return nil
}

// GetDecorationProduct implements catalog.Reader.
func (s *Store) GetDecorationProduct(ctx context.Context, id uuid.UUID) (*catalog.DecorationProduct, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category_id, vendor_id, min_quantity,
		       setup_fee, sample_fee, edit_fee, rush_fee,
		       per_unit_cost, per_color_cost, legacy_setup_cost,
		       active, created_at, updated_at
		FROM decoration_products
		WHERE id = $1
	`, id)

	var p catalog.DecorationProduct
	var setup, sample, edit, rush, perUnit, perColor, legacySetup decimal.NullDecimal
	err := row.Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.VendorID, &p.MinQuantity,
		&setup, &sample, &edit, &rush,
		&perUnit, &perColor, &legacySetup,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get decoration product: %w", err)
	}

	p.SetupFee = nullableDecimal(setup)
	p.SampleFee = nullableDecimal(sample)
	p.EditFee = nullableDecimal(edit)
	p.RushFee = nullableDecimal(rush)
	p.PerUnitCost = nullableDecimal(perUnit)
	p.PerColorCost = nullableDecimal(perColor)
	p.LegacySetupCost = nullableDecimal(legacySetup)
	return &p, nil
}

// GetPricingRecords implements catalog.Reader. Ordering by creation time
// keeps the matcher's source-order tie-break stable across fetches.
func (s *Store) GetPricingRecords(ctx context.Context, productID uuid.UUID) ([]catalog.PricingRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, min_quantity, max_quantity, unit_price,
		       size_bucket_id, color_count, artwork_type, variant_type,
		       active, created_at
		FROM pricing_records
		WHERE product_id = $1 AND active
		ORDER BY created_at, id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list pricing records: %w", err)
	}
	defer rows.Close()

	var records []catalog.PricingRecord
	for rows.Next() {
		var r catalog.PricingRecord
		var maxQty, colorCount sql.NullInt64
		var bucketID uuid.NullUUID
		var artwork, variant sql.NullString
		if err := rows.Scan(
			&r.ID, &r.ProductID, &r.MinQuantity, &maxQty, &r.UnitPrice,
			&bucketID, &colorCount, &artwork, &variant,
			&r.Active, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pricing record: %w", err)
		}
		if maxQty.Valid {
			v := int(maxQty.Int64)
			r.MaxQuantity = &v
		}
		if bucketID.Valid {
			id := bucketID.UUID
			r.SizeBucketID = &id
		}
		if colorCount.Valid {
			v := int(colorCount.Int64)
			r.ColorCount = &v
		}
		if artwork.Valid {
			at, err := catalog.ParseArtworkType(artwork.String)
			if err != nil {
				return nil, fmt.Errorf("pricing record %s: %w", r.ID, err)
			}
			r.ArtworkType = &at
		}
		if variant.Valid {
			v := variant.String
			r.VariantType = &v
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetSizeBuckets implements catalog.Reader.
func (s *Store) GetSizeBuckets(ctx context.Context, productID uuid.UUID) ([]catalog.SizeBucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, name, method, min_value, max_value, position, created_at
		FROM size_buckets
		WHERE product_id = $1
		ORDER BY position, created_at
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list size buckets: %w", err)
	}
	defer rows.Close()

	var buckets []catalog.SizeBucket
	for rows.Next() {
		var b catalog.SizeBucket
		var method string
		var minVal, maxVal sql.NullFloat64
		if err := rows.Scan(&b.ID, &b.ProductID, &b.Name, &method, &minVal, &maxVal, &b.Position, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan size bucket: %w", err)
		}
		m, err := catalog.ParseSizeMethod(method)
		if err != nil {
			return nil, fmt.Errorf("size bucket %s: %w", b.ID, err)
		}
		b.Method = m
		if minVal.Valid {
			v := minVal.Float64
			b.MinValue = &v
		}
		if maxVal.Valid {
			v := maxVal.Float64
			b.MaxValue = &v
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// ListProducts returns the full product list for the admin surface.
func (s *Store) ListProducts(ctx context.Context) ([]catalog.DecorationProduct, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category_id, vendor_id, min_quantity,
		       setup_fee, sample_fee, edit_fee, rush_fee,
		       per_unit_cost, per_color_cost, legacy_setup_cost,
		       active, created_at, updated_at
		FROM decoration_products
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list decoration products: %w", err)
	}
	defer rows.Close()

	var products []catalog.DecorationProduct
	for rows.Next() {
		var p catalog.DecorationProduct
		var setup, sample, edit, rush, perUnit, perColor, legacySetup decimal.NullDecimal
		if err := rows.Scan(
			&p.ID, &p.Name, &p.CategoryID, &p.VendorID, &p.MinQuantity,
			&setup, &sample, &edit, &rush,
			&perUnit, &perColor, &legacySetup,
			&p.Active, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan decoration product: %w", err)
		}
		p.SetupFee = nullableDecimal(setup)
		p.SampleFee = nullableDecimal(sample)
		p.EditFee = nullableDecimal(edit)
		p.RushFee = nullableDecimal(rush)
		p.PerUnitCost = nullableDecimal(perUnit)
		p.PerColorCost = nullableDecimal(perColor)
		p.LegacySetupCost = nullableDecimal(legacySetup)
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertProduct writes a product row, for catalog administration.
func (s *Store) UpsertProduct(ctx context.Context, p catalog.DecorationProduct) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decoration_products (
			id, name, category_id, vendor_id, min_quantity,
			setup_fee, sample_fee, edit_fee, rush_fee,
			per_unit_cost, per_color_cost, legacy_setup_cost,
			active, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			min_quantity = EXCLUDED.min_quantity,
			setup_fee = EXCLUDED.setup_fee,
			sample_fee = EXCLUDED.sample_fee,
			edit_fee = EXCLUDED.edit_fee,
			rush_fee = EXCLUDED.rush_fee,
			per_unit_cost = EXCLUDED.per_unit_cost,
			per_color_cost = EXCLUDED.per_color_cost,
			legacy_setup_cost = EXCLUDED.legacy_setup_cost,
			active = EXCLUDED.active,
			updated_at = now()
	`, p.ID, p.Name, p.CategoryID, p.VendorID, p.MinQuantity,
		decimalOrNil(p.SetupFee), decimalOrNil(p.SampleFee), decimalOrNil(p.EditFee), decimalOrNil(p.RushFee),
		decimalOrNil(p.PerUnitCost), decimalOrNil(p.PerColorCost), decimalOrNil(p.LegacySetupCost),
		p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert decoration product: %w", err)
	}
	return nil
}

// UpsertSizeBucket writes a size bucket row.
func (s *Store) UpsertSizeBucket(ctx context.Context, b catalog.SizeBucket) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO size_buckets (id, product_id, name, method, min_value, max_value, position, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			method = EXCLUDED.method,
			min_value = EXCLUDED.min_value,
			max_value = EXCLUDED.max_value,
			position = EXCLUDED.position
	`, b.ID, b.ProductID, b.Name, string(b.Method), b.MinValue, b.MaxValue, b.Position, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert size bucket: %w", err)
	}
	return nil
}

// UpsertPricingRecord writes a pricing record row.
func (s *Store) UpsertPricingRecord(ctx context.Context, r catalog.PricingRecord) error {
	var artwork *string
	if r.ArtworkType != nil {
		v := string(*r.ArtworkType)
		artwork = &v
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pricing_records (
			id, product_id, min_quantity, max_quantity, unit_price,
			size_bucket_id, color_count, artwork_type, variant_type,
			active, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET
			min_quantity = EXCLUDED.min_quantity,
			max_quantity = EXCLUDED.max_quantity,
			unit_price = EXCLUDED.unit_price,
			size_bucket_id = EXCLUDED.size_bucket_id,
			color_count = EXCLUDED.color_count,
			artwork_type = EXCLUDED.artwork_type,
			variant_type = EXCLUDED.variant_type,
			active = EXCLUDED.active
	`, r.ID, r.ProductID, r.MinQuantity, r.MaxQuantity, r.UnitPrice,
		r.SizeBucketID, r.ColorCount, artwork, r.VariantType,
		r.Active, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert pricing record: %w", err)
	}
	return nil
}

func nullableDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func decimalOrNil(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return *d
}
