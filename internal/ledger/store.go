package ledger

import (
	"database/sql"
	"strings"
	"time"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/db"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
	"github.com/mvinicius/whatsapp-portfolio-bot/internal/models"
)

// Store is the append-only transaction ledger. Rows are never updated
// or deleted; corrections are offsetting transactions on the opposite
// side.
type Store struct {
	conn   *sql.DB
	driver string
}

// New wraps an open connection. driver must match the one the
// connection was opened with.
func New(conn *sql.DB, driver string) *Store {
	return &Store{conn: conn, driver: driver}
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS transactions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		asset_id    TEXT NOT NULL,
		quantity    REAL NOT NULL,
		unit_price  REAL NOT NULL,
		venue       TEXT NOT NULL,
		side        TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS transactions (
		id          SERIAL PRIMARY KEY,
		asset_id    TEXT NOT NULL,
		quantity    DOUBLE PRECISION NOT NULL,
		unit_price  DOUBLE PRECISION NOT NULL,
		venue       TEXT NOT NULL,
		side        TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT NOW()
	)`

// Init creates the transactions table if it does not exist yet.
// Calling it on an initialized store leaves existing rows untouched.
func (s *Store) Init() error {
	schema := sqliteSchema
	if s.driver == "postgres" {
		schema = postgresSchema
	}
	if _, err := s.conn.Exec(schema); err != nil {
		return errs.StorageUnavailable("error initializing database", err)
	}
	return nil
}

// RecordTransaction appends one row and returns its assigned id.
// asset_id and side are stored lowercase. Validation of quantity,
// price and side happens at the tool boundary before this is called.
func (s *Store) RecordTransaction(assetID string, quantity, unitPrice float64, venue, side string) (int64, error) {
	assetID = strings.ToLower(strings.TrimSpace(assetID))
	side = strings.ToLower(strings.TrimSpace(side))
	now := time.Now().UTC()

	if s.driver == "postgres" {
		var id int64
		err := s.conn.QueryRow(db.Rebind(s.driver, `
			INSERT INTO transactions (asset_id, quantity, unit_price, venue, side, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`),
			assetID, quantity, unitPrice, venue, side, now,
		).Scan(&id)
		if err != nil {
			return 0, errs.StorageUnavailable("error adding transaction", err)
		}
		return id, nil
	}

	res, err := s.conn.Exec(`
		INSERT INTO transactions (asset_id, quantity, unit_price, venue, side, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		assetID, quantity, unitPrice, venue, side, now,
	)
	if err != nil {
		return 0, errs.StorageUnavailable("error adding transaction", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.StorageUnavailable("error adding transaction", err)
	}
	return id, nil
}

// ListTransactions returns rows newest-first. An empty assetID means
// no filter; the filter match is case-insensitive.
func (s *Store) ListTransactions(assetID string) ([]models.Transaction, error) {
	query := `
		SELECT id, asset_id, quantity, unit_price, venue, side, created_at
		FROM transactions
		ORDER BY created_at DESC, id DESC`
	args := []any{}

	if assetID != "" {
		query = `
			SELECT id, asset_id, quantity, unit_price, venue, side, created_at
			FROM transactions
			WHERE asset_id = ?
			ORDER BY created_at DESC, id DESC`
		args = append(args, strings.ToLower(strings.TrimSpace(assetID)))
	}

	rows, err := s.conn.Query(db.Rebind(s.driver, query), args...)
	if err != nil {
		return nil, errs.StorageUnavailable("error retrieving transactions", err)
	}
	defer rows.Close()

	txs := make([]models.Transaction, 0)
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.AssetID, &t.Quantity, &t.UnitPrice, &t.Venue, &t.Side, &t.CreatedAt); err != nil {
			return nil, errs.StorageUnavailable("error scanning transaction", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.StorageUnavailable("error retrieving transactions", err)
	}
	return txs, nil
}

// SummarizeHoldings derives the current position per asset. The
// average price is the plain mean of unit prices across buys and
// sells alike, unweighted by quantity. That matches what users have
// been shown historically, so it stays even though it is not a
// cost-basis figure.
func (s *Store) SummarizeHoldings() (*models.PortfolioSummary, error) {
	rows, err := s.conn.Query(`
		SELECT
			asset_id,
			SUM(CASE WHEN side = 'buy' THEN quantity ELSE -quantity END) AS net_quantity,
			AVG(unit_price) AS avg_price,
			COUNT(*) AS transaction_count
		FROM transactions
		GROUP BY asset_id
		HAVING SUM(CASE WHEN side = 'buy' THEN quantity ELSE -quantity END) > 0
		ORDER BY asset_id`)
	if err != nil {
		return nil, errs.StorageUnavailable("error generating portfolio summary", err)
	}
	defer rows.Close()

	holdings := make([]models.Holding, 0)
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.AssetID, &h.NetQuantity, &h.AvgPrice, &h.TransactionCount); err != nil {
			return nil, errs.StorageUnavailable("error scanning holding", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.StorageUnavailable("error generating portfolio summary", err)
	}

	return &models.PortfolioSummary{
		Holdings:      holdings,
		TotalHoldings: len(holdings),
	}, nil
}
