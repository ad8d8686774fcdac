package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acebot/config"
	"acebot/internal/models"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PostgresDB is the user record store. Find and Save are the whole
// contract the conversation flows use: every flow re-reads the record and
// saves it back fully, last writer wins.
type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DB) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := RunMigrations(ctx, cfg.DSN()); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MinIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{pool: pool}, nil
}

func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// FindUser returns the record for userID, or (nil, nil) when no record
// exists yet.
func (db *PostgresDB) FindUser(ctx context.Context, userID int64) (*models.User, error) {
	query := `
        SELECT user_id, username, full_name, stream, is_premium,
               payment_pending, pending_admin_approval, payment_proof,
               pending_action, referral_balance, referral_count,
               referred_by, referral_credited, created_at, last_active
        FROM users
        WHERE user_id = $1
    `

	var u models.User
	err := db.pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.Username, &u.FullName, &u.Stream, &u.IsPremium,
		&u.PaymentPending, &u.PendingAdminApproval, &u.PaymentProof,
		&u.PendingAction, &u.ReferralBalance, &u.ReferralCount,
		&u.ReferredBy, &u.ReferralCredited, &u.CreatedAt, &u.LastActive,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user %d: %w", userID, err)
	}

	return &u, nil
}

// SaveUser upserts the record by user_id, overwriting every field.
func (db *PostgresDB) SaveUser(ctx context.Context, u *models.User) error {
	query := `
        INSERT INTO users (
            user_id, username, full_name, stream, is_premium,
            payment_pending, pending_admin_approval, payment_proof,
            pending_action, referral_balance, referral_count,
            referred_by, referral_credited, created_at, last_active
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
        ON CONFLICT (user_id) DO UPDATE SET
            username = $2, full_name = $3, stream = $4, is_premium = $5,
            payment_pending = $6, pending_admin_approval = $7,
            payment_proof = $8, pending_action = $9, referral_balance = $10,
            referral_count = $11, referred_by = $12, referral_credited = $13,
            last_active = $15
    `

	_, err := db.pool.Exec(ctx, query,
		u.UserID, u.Username, u.FullName, u.Stream, u.IsPremium,
		u.PaymentPending, u.PendingAdminApproval, u.PaymentProof,
		u.PendingAction, u.ReferralBalance, u.ReferralCount,
		u.ReferredBy, u.ReferralCredited, u.CreatedAt, u.LastActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save user %d: %w", u.UserID, err)
	}
	return nil
}

// UserSummary is the read-only projection the maintenance CLI lists.
type UserSummary struct {
	UserID    int64
	Username  string
	FullName  string
	IsPremium bool
}

func (db *PostgresDB) ListUsers(ctx context.Context) ([]UserSummary, error) {
	query := `
        SELECT user_id, username, full_name, is_premium
        FROM users
        ORDER BY user_id
    `

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []UserSummary
	for rows.Next() {
		var s UserSummary
		if err := rows.Scan(&s.UserID, &s.Username, &s.FullName, &s.IsPremium); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, s)
	}
	return users, rows.Err()
}

// DeleteUser removes one record. Returns false when no record matched.
func (db *PostgresDB) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user %d: %w", userID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAllUsers wipes the users table and reports how many records went.
func (db *PostgresDB) DeleteAllUsers(ctx context.Context) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete users: %w", err)
	}
	return tag.RowsAffected(), nil
}
