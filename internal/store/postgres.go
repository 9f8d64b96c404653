package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// Postgres persists bets and subscriptions in PostgreSQL. Selections are
// stored as a JSONB column; they are opaque to the engine, which only reads
// team names out of them.
//
// Expected schema:
//
//	CREATE TABLE bets (
//	    id            TEXT PRIMARY KEY,
//	    booking_code  TEXT,
//	    platform      TEXT,
//	    selections    JSONB NOT NULL,
//	    stake         DOUBLE PRECISION,
//	    total_odds    DOUBLE PRECISION,
//	    potential_win DOUBLE PRECISION,
//	    currency      TEXT,
//	    status        TEXT NOT NULL DEFAULT 'pending',
//	    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE TABLE subscriptions (
//	    id      TEXT PRIMARY KEY,
//	    bet_id  TEXT NOT NULL REFERENCES bets(id) ON DELETE CASCADE,
//	    channel TEXT NOT NULL,
//	    target  TEXT NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

var _ Store = (*Postgres)(nil)

// NewPostgres opens and pings a Postgres connection.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// ListActiveBets returns bets not yet in a terminal status, newest first.
func (p *Postgres) ListActiveBets(ctx context.Context) ([]models.TrackedBet, error) {
	query := `
		SELECT id, booking_code, platform, selections, stake, total_odds, potential_win, currency, status, created_at
		FROM bets
		WHERE status NOT IN ('settled', 'won', 'lost', 'void')
		ORDER BY created_at DESC
	`
	return p.queryBets(ctx, query)
}

// ListBets returns all bets, newest first.
func (p *Postgres) ListBets(ctx context.Context) ([]models.TrackedBet, error) {
	query := `
		SELECT id, booking_code, platform, selections, stake, total_odds, potential_win, currency, status, created_at
		FROM bets
		ORDER BY created_at DESC
	`
	return p.queryBets(ctx, query)
}

func (p *Postgres) queryBets(ctx context.Context, query string, args ...interface{}) ([]models.TrackedBet, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bets: %w", err)
	}
	defer rows.Close()

	var bets []models.TrackedBet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, *bet)
	}
	return bets, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBet(row rowScanner) (*models.TrackedBet, error) {
	var (
		bet           models.TrackedBet
		bookingCode   sql.NullString
		platform      sql.NullString
		selectionsRaw []byte
		stake         sql.NullFloat64
		totalOdds     sql.NullFloat64
		potentialWin  sql.NullFloat64
		currency      sql.NullString
	)

	err := row.Scan(&bet.ID, &bookingCode, &platform, &selectionsRaw,
		&stake, &totalOdds, &potentialWin, &currency, &bet.Status, &bet.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan bet: %w", err)
	}

	bet.BookingCode = bookingCode.String
	bet.Platform = platform.String
	bet.Stake = stake.Float64
	bet.TotalOdds = totalOdds.Float64
	bet.PotentialWin = potentialWin.Float64
	bet.Currency = currency.String

	if len(selectionsRaw) > 0 {
		if err := json.Unmarshal(selectionsRaw, &bet.Selections); err != nil {
			return nil, fmt.Errorf("unmarshal selections for bet %s: %w", bet.ID, err)
		}
	}
	return &bet, nil
}

// GetBet returns one bet or (nil, nil) when absent.
func (p *Postgres) GetBet(ctx context.Context, id string) (*models.TrackedBet, error) {
	query := `
		SELECT id, booking_code, platform, selections, stake, total_odds, potential_win, currency, status, created_at
		FROM bets
		WHERE id = $1
	`
	bet, err := scanBet(p.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bet, nil
}

// CreateBet inserts a bet, assigning an id and defaults as needed.
func (p *Postgres) CreateBet(ctx context.Context, bet *models.TrackedBet) error {
	if bet.ID == "" {
		bet.ID = uuid.NewString()
	}
	if bet.Status == "" {
		bet.Status = models.BetStatusPending
	}
	if bet.CreatedAt.IsZero() {
		bet.CreatedAt = time.Now().UTC()
	}

	selections, err := json.Marshal(bet.Selections)
	if err != nil {
		return fmt.Errorf("marshal selections: %w", err)
	}

	query := `
		INSERT INTO bets (id, booking_code, platform, selections, stake, total_odds, potential_win, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = p.db.ExecContext(ctx, query, bet.ID, bet.BookingCode, bet.Platform, selections,
		bet.Stake, bet.TotalOdds, bet.PotentialWin, bet.Currency, bet.Status, bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bet: %w", err)
	}
	return nil
}

// UpdateBetStatus moves a bet to a new status.
func (p *Postgres) UpdateBetStatus(ctx context.Context, id, status string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE bets SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update bet status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bet %s not found", id)
	}
	return nil
}

// DeleteBet removes a bet and, via cascade, its subscriptions.
func (p *Postgres) DeleteBet(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bet %s not found", id)
	}
	return nil
}

// ListSubscriptions returns the notification subscriptions for a bet.
func (p *Postgres) ListSubscriptions(ctx context.Context, betID string) ([]models.Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, bet_id, channel, target FROM subscriptions WHERE bet_id = $1`, betID)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.BetID, &sub.Channel, &sub.Target); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CreateSubscription inserts a subscription, assigning an id as needed.
func (p *Postgres) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, bet_id, channel, target) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.BetID, sub.Channel, sub.Target)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}
