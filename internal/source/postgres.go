// Package source loads raw transaction records from external stores. The
// records it returns are unvalidated; the filter decides what enters the
// reports.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/shopspring/decimal"

	"retail-dashboard/internal/config"
	"retail-dashboard/internal/models"
)

const selectTransactions = `
	SELECT transactions_id, sale_date, sale_time, customer_id,
	       gender, age, category, quantity, price_per_unit, cogs
	FROM retail_sales
	ORDER BY transactions_id
`

// Postgres reads the retail_sales table the reports were originally written
// against.
type Postgres struct {
	db *sqlx.DB
}

func OpenPostgres(cfg config.PostgresConfig) (*Postgres, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// transactionRow mirrors retail_sales with nullable columns so partially
// populated rows still reach the filter instead of failing the scan.
type transactionRow struct {
	TransactionID int                 `db:"transactions_id"`
	SaleDate      sql.NullTime        `db:"sale_date"`
	SaleTime      sql.NullString      `db:"sale_time"`
	CustomerID    sql.NullInt64       `db:"customer_id"`
	Gender        sql.NullString      `db:"gender"`
	Age           sql.NullInt64       `db:"age"`
	Category      sql.NullString      `db:"category"`
	Quantity      sql.NullInt64       `db:"quantity"`
	PricePerUnit  decimal.NullDecimal `db:"price_per_unit"`
	COGS          decimal.NullDecimal `db:"cogs"`
}

// Transactions fetches every retail_sales row as a raw record.
func (p *Postgres) Transactions(ctx context.Context) ([]models.RawTransaction, error) {
	var rows []transactionRow
	if err := p.db.SelectContext(ctx, &rows, selectTransactions); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	records := make([]models.RawTransaction, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toRaw())
	}
	return records, nil
}

func (r transactionRow) toRaw() models.RawTransaction {
	raw := models.RawTransaction{
		TransactionID: r.TransactionID,
		CustomerID:    int(r.CustomerID.Int64),
		Gender:        r.Gender.String,
		Age:           int(r.Age.Int64),
		Category:      r.Category.String,
		Quantity:      int(r.Quantity.Int64),
	}
	if r.SaleDate.Valid {
		raw.SaleDate = r.SaleDate.Time
	}
	if r.SaleTime.Valid {
		if t, err := time.Parse("15:04:05", r.SaleTime.String); err == nil {
			raw.SaleTime = t
		}
	}
	if r.PricePerUnit.Valid {
		raw.PricePerUnit = r.PricePerUnit.Decimal
	}
	if r.COGS.Valid {
		raw.COGS = r.COGS.Decimal
	}
	return raw
}
