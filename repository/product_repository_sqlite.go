package repository

import (
	"context"
	"database/sql"
	"fmt"

	"loan-simulator/domain"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteProductRepository reads products from the produto table.
type SQLiteProductRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteProductRepository opens the database, creates the produto table if
// missing and, when seed is set and the table is empty, inserts
// DefaultProducts.
func NewSQLiteProductRepository(driver, dsn string, seed bool, logger *zap.Logger) (*SQLiteProductRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	r := &SQLiteProductRepository{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if seed {
		if err := r.seed(); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	logger.Info("product repository opened",
		zap.String("op", "repository.NewSQLiteProductRepository"),
		zap.String("driver", driver),
	)
	return r, nil
}

func (r *SQLiteProductRepository) migrate() error {
	_, err := r.db.Exec(`CREATE TABLE IF NOT EXISTS produto (
		co_produto      INTEGER PRIMARY KEY,
		no_produto      TEXT    NOT NULL,
		pc_taxa_juros   REAL    NOT NULL,
		nu_minimo_meses INTEGER NOT NULL,
		nu_maximo_meses INTEGER,
		vr_minimo       REAL    NOT NULL,
		vr_maximo       REAL
	)`)
	return err
}

func (r *SQLiteProductRepository) seed() error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM produto`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, p := range DefaultProducts() {
		if err := insertProduct(tx, p); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info("seeded product table",
		zap.String("op", "repository.seed"),
		zap.Int("products", len(DefaultProducts())),
	)
	return nil
}

// Insert adds or replaces a product.
func (r *SQLiteProductRepository) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.db.ExecContext(ctx, upsertProductSQL, productArgs(p)...)
	if err != nil {
		return fmt.Errorf("insert product %d: %w", p.Code, err)
	}
	return nil
}

const upsertProductSQL = `INSERT OR REPLACE INTO produto
	(co_produto, no_produto, pc_taxa_juros, nu_minimo_meses, nu_maximo_meses, vr_minimo, vr_maximo)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

func insertProduct(tx *sql.Tx, p domain.Product) error {
	_, err := tx.Exec(upsertProductSQL, productArgs(p)...)
	return err
}

func productArgs(p domain.Product) []any {
	var maxTerm sql.NullInt64
	if p.MaxTerm != nil {
		maxTerm = sql.NullInt64{Int64: int64(*p.MaxTerm), Valid: true}
	}
	var maxAmount sql.NullFloat64
	if p.MaxAmount != nil {
		maxAmount = sql.NullFloat64{Float64: *p.MaxAmount, Valid: true}
	}
	return []any{p.Code, p.Description, p.Rate, p.MinTerm, maxTerm, p.MinAmount, maxAmount}
}

// ListProducts returns every product ordered by code.
func (r *SQLiteProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT co_produto, no_produto, pc_taxa_juros,
		nu_minimo_meses, nu_maximo_meses, vr_minimo, vr_maximo
		FROM produto ORDER BY co_produto`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var (
			p         domain.Product
			maxTerm   sql.NullInt64
			maxAmount sql.NullFloat64
		)
		if err := rows.Scan(&p.Code, &p.Description, &p.Rate, &p.MinTerm, &maxTerm, &p.MinAmount, &maxAmount); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if maxTerm.Valid {
			p.MaxTerm = intPtr(int(maxTerm.Int64))
		}
		if maxAmount.Valid {
			p.MaxAmount = floatPtr(maxAmount.Float64)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// Close closes the database.
func (r *SQLiteProductRepository) Close() error {
	return r.db.Close()
}
