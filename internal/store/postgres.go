package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/punchamoorthee/deckops/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    user_id      BIGINT PRIMARY KEY,
    balance      BIGINT NOT NULL DEFAULT 0,
    total_slides BIGINT NOT NULL DEFAULT 0,
    total_spent  BIGINT NOT NULL DEFAULT 0
)`

// Postgres persists accounts as rows in a single users table. Row upserts
// are atomic, so it is safe under concurrent readers; mutations still go
// through the ledger manager's gate like every other backend.
type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ensure schema: %w", err)
	}

	return &Postgres{db: pool}, nil
}

func (p *Postgres) Get(ctx context.Context, userID int64) (models.Account, error) {
	var acc models.Account
	err := p.db.QueryRow(ctx,
		"SELECT user_id, balance, total_slides, total_spent FROM users WHERE user_id = $1",
		userID,
	).Scan(&acc.UserID, &acc.Balance, &acc.TotalSlides, &acc.TotalSpent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Account{}, ErrNotFound
		}
		return models.Account{}, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return acc, nil
}

func (p *Postgres) Put(ctx context.Context, account models.Account) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO users (user_id, balance, total_slides, total_spent)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET balance = EXCLUDED.balance,
		     total_slides = EXCLUDED.total_slides,
		     total_spent = EXCLUDED.total_spent`,
		account.UserID, account.Balance, account.TotalSlides, account.TotalSpent,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

func (p *Postgres) All(ctx context.Context) ([]models.Account, error) {
	rows, err := p.db.Query(ctx,
		"SELECT user_id, balance, total_slides, total_spent FROM users")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var acc models.Account
		if err := rows.Scan(&acc.UserID, &acc.Balance, &acc.TotalSlides, &acc.TotalSpent); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return accounts, nil
}

func (p *Postgres) Close() {
	p.db.Close()
}
