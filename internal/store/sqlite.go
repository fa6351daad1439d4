package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"QuoteSentinel/internal/model"
)

// SQLiteStore persists quotes and daily bars to a SQLite database. Decimal
// columns are stored as TEXT so values round-trip without binary-float drift.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while the daemon writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS quotes (
			symbol               TEXT PRIMARY KEY,
			price                TEXT NOT NULL,
			daily_change_nominal TEXT NOT NULL,
			daily_change_percent TEXT NOT NULL,
			volume               INTEGER NOT NULL,
			high                 TEXT NOT NULL,
			low                  TEXT NOT NULL,
			open                 TEXT NOT NULL,
			previous_close       TEXT NOT NULL,
			last_updated         TEXT NOT NULL,
			market               TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol               TEXT NOT NULL,
			date                 TEXT NOT NULL,
			open                 TEXT NOT NULL,
			high                 TEXT NOT NULL,
			low                  TEXT NOT NULL,
			close                TEXT NOT NULL,
			adj_close            TEXT NOT NULL,
			volume               INTEGER NOT NULL,
			daily_change_nominal TEXT NOT NULL,
			daily_change_percent TEXT NOT NULL,
			previous_close       TEXT NOT NULL,
			PRIMARY KEY (symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_date ON daily_bars(date)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) PutQuote(q *model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO quotes
		(symbol, price, daily_change_nominal, daily_change_percent, volume,
		 high, low, open, previous_close, last_updated, market)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		q.Symbol, q.Price.String(), q.DailyChangeNominal.String(),
		q.DailyChangePercent.String(), q.Volume, q.High.String(), q.Low.String(),
		q.Open.String(), q.PreviousClose.String(), q.LastUpdated, q.Market,
	)
	return err
}

func (s *SQLiteStore) GetQuote(symbol string) (*model.Quote, error) {
	row := s.db.QueryRow(`SELECT symbol, price, daily_change_nominal,
		daily_change_percent, volume, high, low, open, previous_close,
		last_updated, market FROM quotes WHERE symbol = ?`, symbol)
	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func (s *SQLiteStore) BatchPutQuotes(quotes []*model.Quote) (int, []string) {
	success := 0
	var failed []string
	for _, q := range quotes {
		if err := s.PutQuote(q); err != nil {
			log.Printf("[ERROR] store quote %s: %v", q.Symbol, err)
			failed = append(failed, q.Symbol)
			continue
		}
		success++
	}
	return success, failed
}

func (s *SQLiteStore) ScanQuotes() ([]*model.Quote, error) {
	rows, err := s.db.Query(`SELECT symbol, price, daily_change_nominal,
		daily_change_percent, volume, high, low, open, previous_close,
		last_updated, market FROM quotes ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteQuote(symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM quotes WHERE symbol = ?`, symbol)
	return err
}

func (s *SQLiteStore) PutBar(b *model.DailyBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT OR REPLACE INTO daily_bars
		(symbol, date, open, high, low, close, adj_close, volume,
		 daily_change_nominal, daily_change_percent, previous_close)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		b.Symbol, b.Date, b.Open.String(), b.High.String(), b.Low.String(),
		b.Close.String(), b.AdjClose.String(), b.Volume,
		b.DailyChangeNominal.String(), b.DailyChangePercent.String(),
		b.PreviousClose.String(),
	)
	return err
}

func (s *SQLiteStore) BatchPutBars(bars []*model.DailyBar) (int, []string) {
	success := 0
	var failed []string
	for _, b := range bars {
		if err := s.PutBar(b); err != nil {
			log.Printf("[ERROR] store bar %s: %v", b.Key(), err)
			failed = append(failed, b.Key())
			continue
		}
		success++
	}
	return success, failed
}

func (s *SQLiteStore) QueryBars(symbol, startDate, endDate string, limit int) ([]*model.DailyBar, error) {
	query := `SELECT symbol, date, open, high, low, close, adj_close, volume,
		daily_change_nominal, daily_change_percent, previous_close
		FROM daily_bars WHERE symbol = ?`
	args := []any{symbol}
	if startDate != "" {
		query += ` AND date >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		query += ` AND date <= ?`
		args = append(args, endDate)
	}
	query += ` ORDER BY date`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.DailyBar
	for rows.Next() {
		b, err := scanBar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LatestDate(symbol string) (string, bool, error) {
	var date sql.NullString
	err := s.db.QueryRow(`SELECT MAX(date) FROM daily_bars WHERE symbol = ?`, symbol).Scan(&date)
	if err != nil {
		return "", false, err
	}
	if !date.Valid || date.String == "" {
		return "", false, nil
	}
	return date.String, true, nil
}

func (s *SQLiteStore) DeleteBarRange(symbol, startDate, endDate string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `DELETE FROM daily_bars WHERE symbol = ?`
	args := []any{symbol}
	if startDate != "" {
		query += ` AND date >= ?`
		args = append(args, startDate)
	}
	if endDate != "" {
		query += ` AND date <= ?`
		args = append(args, endDate)
	}
	res, err := s.db.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Ping() error { return s.db.Ping() }

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (*model.Quote, error) {
	var q model.Quote
	var price, nominal, percent, high, low, open, prevClose string
	if err := row.Scan(&q.Symbol, &price, &nominal, &percent, &q.Volume,
		&high, &low, &open, &prevClose, &q.LastUpdated, &q.Market); err != nil {
		return nil, err
	}
	var err error
	if q.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("quote %s: bad price %q: %w", q.Symbol, price, err)
	}
	if q.DailyChangeNominal, err = decimal.NewFromString(nominal); err != nil {
		return nil, fmt.Errorf("quote %s: bad change %q: %w", q.Symbol, nominal, err)
	}
	if q.DailyChangePercent, err = decimal.NewFromString(percent); err != nil {
		return nil, fmt.Errorf("quote %s: bad change percent %q: %w", q.Symbol, percent, err)
	}
	if q.High, err = decimal.NewFromString(high); err != nil {
		return nil, fmt.Errorf("quote %s: bad high %q: %w", q.Symbol, high, err)
	}
	if q.Low, err = decimal.NewFromString(low); err != nil {
		return nil, fmt.Errorf("quote %s: bad low %q: %w", q.Symbol, low, err)
	}
	if q.Open, err = decimal.NewFromString(open); err != nil {
		return nil, fmt.Errorf("quote %s: bad open %q: %w", q.Symbol, open, err)
	}
	if q.PreviousClose, err = decimal.NewFromString(prevClose); err != nil {
		return nil, fmt.Errorf("quote %s: bad previous close %q: %w", q.Symbol, prevClose, err)
	}
	return &q, nil
}

func scanBar(row scanner) (*model.DailyBar, error) {
	var b model.DailyBar
	var open, high, low, closeP, adjClose, nominal, percent, prevClose string
	if err := row.Scan(&b.Symbol, &b.Date, &open, &high, &low, &closeP,
		&adjClose, &b.Volume, &nominal, &percent, &prevClose); err != nil {
		return nil, err
	}
	fields := []struct {
		dst *decimal.Decimal
		raw string
	}{
		{&b.Open, open}, {&b.High, high}, {&b.Low, low}, {&b.Close, closeP},
		{&b.AdjClose, adjClose}, {&b.DailyChangeNominal, nominal},
		{&b.DailyChangePercent, percent}, {&b.PreviousClose, prevClose},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("bar %s: bad decimal %q: %w", b.Key(), f.raw, err)
		}
		*f.dst = v
	}
	return &b, nil
}
