package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

type sqliteBanRepo struct {
	db database.TxQuerier
}

// NewSQLiteBanRepo, BanRepository'nin SQLite implementasyonunu oluşturur.
func NewSQLiteBanRepo(db database.TxQuerier) BanRepository {
	return &sqliteBanRepo{db: db}
}

func (r *sqliteBanRepo) Get(ctx context.Context, serverID, userID string) (*models.Ban, error) {
	query := `
		SELECT server_id, user_id, moderator_id, reason, expires_at, active, created_at
		FROM bans WHERE server_id = ? AND user_id = ?`

	ban := &models.Ban{}
	err := r.db.QueryRowContext(ctx, query, serverID, userID).Scan(
		&ban.ServerID, &ban.UserID, &ban.ModeratorID,
		&ban.Reason, &ban.ExpiresAt, &ban.Active, &ban.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ban: %w", err)
	}

	return ban, nil
}

// IsBanned — süre dolumu okuma anında değerlendirilir: aktif ama süresi
// geçmiş yasak banlı SAYILMAZ. Arka plan temizleyici yoktur; satır bir
// sonraki unban/re-ban'e kadar eski haliyle durabilir, davranışı etkilemez.
func (r *sqliteBanRepo) IsBanned(ctx context.Context, serverID, userID string, now time.Time) (bool, error) {
	query := `
		SELECT 1 FROM bans
		WHERE server_id = ? AND user_id = ? AND active = 1
		  AND (expires_at IS NULL OR expires_at > ?)
		LIMIT 1`

	var dummy int
	err := r.db.QueryRowContext(ctx, query, serverID, userID, now).Scan(&dummy)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check ban: %w", err)
	}

	return true, nil
}

func (r *sqliteBanRepo) ListActive(ctx context.Context, serverID string) ([]models.Ban, error) {
	query := `
		SELECT server_id, user_id, moderator_id, reason, expires_at, active, created_at
		FROM bans WHERE server_id = ? AND active = 1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active bans: %w", err)
	}
	defer rows.Close()

	var bans []models.Ban
	for rows.Next() {
		var ban models.Ban
		if err := rows.Scan(
			&ban.ServerID, &ban.UserID, &ban.ModeratorID,
			&ban.Reason, &ban.ExpiresAt, &ban.Active, &ban.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ban row: %w", err)
		}
		bans = append(bans, ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ban rows: %w", err)
	}

	return bans, nil
}

// Upsert — ON CONFLICT DO UPDATE: (server_id, user_id) zaten varsa satır
// yeni moderator/reason/expiry ile tazelenir ve tekrar aktif olur.
// Eşzamanlı iki ban bu yüzden iki satır değil, tek güncel satır üretir.
func (r *sqliteBanRepo) Upsert(ctx context.Context, ban *models.Ban) error {
	query := `
		INSERT INTO bans (server_id, user_id, moderator_id, reason, expires_at, active)
		VALUES (?, ?, ?, ?, ?, 1)
		ON CONFLICT(server_id, user_id) DO UPDATE SET
			moderator_id = excluded.moderator_id,
			reason = excluded.reason,
			expires_at = excluded.expires_at,
			active = 1,
			created_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query,
		ban.ServerID, ban.UserID, ban.ModeratorID, ban.Reason, ban.ExpiresAt,
	); err != nil {
		return fmt.Errorf("failed to upsert ban: %w", err)
	}

	ban.Active = true
	return nil
}

func (r *sqliteBanRepo) Deactivate(ctx context.Context, serverID, userID string) (bool, error) {
	query := `UPDATE bans SET active = 0 WHERE server_id = ? AND user_id = ? AND active = 1`

	result, err := r.db.ExecContext(ctx, query, serverID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to deactivate ban: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}
