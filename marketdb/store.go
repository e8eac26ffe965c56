// Package marketdb stores closing prices and exchange rates in SQLite and
// serves them to the engine.
package marketdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/etnz/perfledger"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store is a market data database. It implements perfledger.Provider.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

var _ perfledger.Provider = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and runs migrations.
// Use ":memory:" for a private in-memory database.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db, log: log.With().Str("component", "marketdb").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.log.Debug().Str("path", path).Msg("market database opened")
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prices (
			symbol TEXT NOT NULL,
			day    TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, day)
		)`,
		`CREATE TABLE IF NOT EXISTS rates (
			base  TEXT NOT NULL,
			quote TEXT NOT NULL,
			day   TEXT NOT NULL,
			rate  REAL NOT NULL,
			PRIMARY KEY (base, quote, day)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

// Put stores quotes, replacing existing ones for the same key and day.
func (s *Store) Put(ctx context.Context, quotes []perfledger.Quote) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, q := range quotes {
		if q.IsRate() {
			_, err = tx.ExecContext(ctx, `INSERT INTO rates (base, quote, day, rate) VALUES (?, ?, ?, ?)
				ON CONFLICT (base, quote, day) DO UPDATE SET rate = excluded.rate`,
				q.From, q.To, q.On.String(), q.Value)
		} else {
			_, err = tx.ExecContext(ctx, `INSERT INTO prices (symbol, day, close) VALUES (?, ?, ?)
				ON CONFLICT (symbol, day) DO UPDATE SET close = excluded.close`,
				q.Symbol, q.On.String(), q.Value)
		}
		if err != nil {
			return fmt.Errorf("store %s on %s: %w", q.Key(), q.On, err)
		}
	}
	return tx.Commit()
}

// Import reads market data JSONL from r and stores it. It returns the number
// of quotes read.
func (s *Store) Import(ctx context.Context, name string, r io.Reader) (int, error) {
	quotes, err := perfledger.DecodeMarket(name, r)
	if err != nil {
		return 0, err
	}
	if err := s.Put(ctx, quotes); err != nil {
		return 0, err
	}
	s.log.Info().Str("file", name).Int("quotes", len(quotes)).Msg("market data imported")
	return len(quotes), nil
}

// Export writes every stored quote as market data JSONL.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	var quotes []perfledger.Quote
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, '', '', day, close FROM prices
		UNION ALL SELECT '', base, quote, day, rate FROM rates`)
	if err != nil {
		return fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var q perfledger.Quote
		var day string
		if err := rows.Scan(&q.Symbol, &q.From, &q.To, &day, &q.Value); err != nil {
			return fmt.Errorf("scan quote: %w", err)
		}
		if q.On, err = perfledger.ParseDate(day); err != nil {
			return fmt.Errorf("invalid day %q in database: %w", day, err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return perfledger.EncodeMarket(w, quotes)
}

// ClosingPrices implements perfledger.Provider.
func (s *Store) ClosingPrices(ctx context.Context, symbol string, r perfledger.Range) (*perfledger.History, error) {
	return s.history(ctx, `SELECT day, close FROM prices WHERE symbol = ? AND day BETWEEN ? AND ? ORDER BY day`,
		symbol, r.From.String(), r.To.String())
}

// ExchangeRates implements perfledger.Provider. Only the pair as stored is
// returned, the engine looks up the inverse pair itself.
func (s *Store) ExchangeRates(ctx context.Context, from, to string, r perfledger.Range) (*perfledger.History, error) {
	return s.history(ctx, `SELECT day, rate FROM rates WHERE base = ? AND quote = ? AND day BETWEEN ? AND ? ORDER BY day`,
		from, to, r.From.String(), r.To.String())
}

func (s *Store) history(ctx context.Context, query string, args ...any) (*perfledger.History, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	h := perfledger.NewHistory()
	for rows.Next() {
		var day string
		var v float64
		if err := rows.Scan(&day, &v); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		on, err := perfledger.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("invalid day %q in database: %w", day, err)
		}
		h.Append(on, v)
	}
	return h, rows.Err()
}
