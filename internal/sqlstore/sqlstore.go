// Package sqlstore loads normalized lines into SQLite and answers the fixed
// spend queries over them.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ginjaninja78/EDI850-converter/internal/aggregate"
	"github.com/ginjaninja78/EDI850-converter/internal/types"
)

// TableName is the table that holds the loaded lines.
const TableName = "purchase_orders"

const (
	createTable = `
CREATE TABLE IF NOT EXISTS purchase_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	Line TEXT NOT NULL,
	Qty INTEGER NOT NULL,
	Quantity_UOM TEXT,
	Price REAL NOT NULL,
	Item_ID TEXT NOT NULL,
	Seller TEXT NOT NULL DEFAULT '',
	LineTotal REAL NOT NULL
);`

	insertLine = `INSERT INTO purchase_orders
	(Line, Qty, Quantity_UOM, Price, Item_ID, Seller, LineTotal)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryTotalSpend    = `SELECT COALESCE(SUM(LineTotal), 0), COALESCE(SUM(Qty), 0), COUNT(*) FROM purchase_orders`
	queryQtyPerItem    = `SELECT Item_ID, SUM(Qty) AS TotalQty FROM purchase_orders GROUP BY Item_ID ORDER BY Item_ID`
	querySpendBySeller = `SELECT Seller, SUM(LineTotal) AS Spend FROM purchase_orders GROUP BY Seller ORDER BY Seller`
)

// Store is a SQLite database holding one purchase order's lines.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Load replaces the table contents with lines in a single transaction.
func (s *Store) Load(ctx context.Context, lines []types.NormalizedLine) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+TableName); err != nil {
		return fmt.Errorf("clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertLine)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range lines {
		if _, err := stmt.ExecContext(ctx, l.LineNumber, l.Qty, l.QuantityUOM, l.Price, l.ItemID, l.Seller, l.LineTotal); err != nil {
			return fmt.Errorf("insert line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TotalSpend returns SUM(LineTotal), or 0 for an empty table.
func (s *Store) TotalSpend(ctx context.Context) (float64, error) {
	total, _, _, err := s.totals(ctx)
	return total, err
}

func (s *Store) totals(ctx context.Context) (float64, int64, int, error) {
	var (
		total float64
		qty   int64
		count int
	)
	if err := s.db.QueryRowContext(ctx, queryTotalSpend).Scan(&total, &qty, &count); err != nil {
		return 0, 0, 0, fmt.Errorf("query total spend: %w", err)
	}
	return total, qty, count, nil
}

// QuantityByItem returns SUM(Qty) grouped by Item_ID.
func (s *Store) QuantityByItem(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, queryQtyPerItem)
	if err != nil {
		return nil, fmt.Errorf("query quantity per item: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			item string
			qty  int64
		)
		if err := rows.Scan(&item, &qty); err != nil {
			return nil, err
		}
		out[item] = qty
	}
	return out, rows.Err()
}

// SpendPercentBySeller returns each seller's share of total spend.
// The division happens in Go so that a zero total follows the same policy
// as the aggregator.
func (s *Store) SpendPercentBySeller(ctx context.Context) (map[string]float64, error) {
	total, err := s.TotalSpend(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, querySpendBySeller)
	if err != nil {
		return nil, fmt.Errorf("query spend per seller: %w", err)
	}
	defer rows.Close()

	spend := make(map[string]float64)
	for rows.Next() {
		var (
			seller string
			amount float64
		)
		if err := rows.Scan(&seller, &amount); err != nil {
			return nil, err
		}
		spend[seller] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return aggregate.SpendPercent(spend, total), nil
}

// Statistics runs every fixed query and assembles the result.
func (s *Store) Statistics(ctx context.Context) (types.Statistics, error) {
	total, qty, count, err := s.totals(ctx)
	if err != nil {
		return types.Statistics{}, err
	}

	byItem, err := s.QuantityByItem(ctx)
	if err != nil {
		return types.Statistics{}, err
	}

	bySeller, err := s.SpendPercentBySeller(ctx)
	if err != nil {
		return types.Statistics{}, err
	}

	return types.Statistics{
		TotalSpend:           total,
		TotalQuantity:        qty,
		LineCount:            count,
		QuantityByItem:       byItem,
		SpendPercentBySeller: bySeller,
	}, nil
}
