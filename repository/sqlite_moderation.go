// Package repository — ModerationRepository'nin SQLite implementasyonu.
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

type sqliteModerationRepo struct {
	db database.TxQuerier
}

// NewSQLiteModerationRepo, constructor.
func NewSQLiteModerationRepo(db database.TxQuerier) ModerationRepository {
	return &sqliteModerationRepo{db: db}
}

func (r *sqliteModerationRepo) GetActive(ctx context.Context, serverID, userID string, kind models.ModerationKind) (*models.ModerationRecord, error) {
	query := `
		SELECT id, server_id, user_id, moderator_id, kind, reason, expires_at, active, created_at
		FROM moderation_records
		WHERE server_id = ? AND user_id = ? AND kind = ? AND active = 1`

	rec := &models.ModerationRecord{}
	err := r.db.QueryRowContext(ctx, query, serverID, userID, string(kind)).Scan(
		&rec.ID, &rec.ServerID, &rec.UserID, &rec.ModeratorID,
		&rec.Kind, &rec.Reason, &rec.ExpiresAt, &rec.Active, &rec.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active moderation record: %w", err)
	}

	return rec, nil
}

func (r *sqliteModerationRepo) ListByServer(ctx context.Context, serverID, filterUserID string, limit, offset int) ([]models.ModerationRecord, int, error) {
	// Toplam sayı ayrı sorgu — sayfalama UI'ı "N kayıttan X-Y" gösterir.
	countQuery := `SELECT COUNT(*) FROM moderation_records WHERE server_id = ?`
	listQuery := `
		SELECT id, server_id, user_id, moderator_id, kind, reason, expires_at, active, created_at
		FROM moderation_records WHERE server_id = ?`

	countArgs := []any{serverID}
	listArgs := []any{serverID}

	if filterUserID != "" {
		countQuery += ` AND user_id = ?`
		listQuery += ` AND user_id = ?`
		countArgs = append(countArgs, filterUserID)
		listArgs = append(listArgs, filterUserID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count moderation records: %w", err)
	}

	listQuery += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs = append(listArgs, limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list moderation records: %w", err)
	}
	defer rows.Close()

	var records []models.ModerationRecord
	for rows.Next() {
		var rec models.ModerationRecord
		if err := rows.Scan(
			&rec.ID, &rec.ServerID, &rec.UserID, &rec.ModeratorID,
			&rec.Kind, &rec.Reason, &rec.ExpiresAt, &rec.Active, &rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan moderation record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating moderation records: %w", err)
	}

	return records, total, nil
}

func (r *sqliteModerationRepo) Insert(ctx context.Context, rec *models.ModerationRecord) error {
	query := `
		INSERT INTO moderation_records (id, server_id, user_id, moderator_id, kind, reason, expires_at, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.ServerID, rec.UserID, rec.ModeratorID,
		string(rec.Kind), rec.Reason, rec.ExpiresAt, rec.Active,
	).Scan(&rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert moderation record: %w", err)
	}

	return nil
}

func (r *sqliteModerationRepo) RefreshActive(ctx context.Context, serverID, userID string, kind models.ModerationKind, moderatorID, reason string, expiresAt *time.Time) (bool, error) {
	query := `
		UPDATE moderation_records
		SET moderator_id = ?, reason = ?, expires_at = ?
		WHERE server_id = ? AND user_id = ? AND kind = ? AND active = 1`

	result, err := r.db.ExecContext(ctx, query,
		moderatorID, reason, expiresAt, serverID, userID, string(kind),
	)
	if err != nil {
		return false, fmt.Errorf("failed to refresh active moderation record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *sqliteModerationRepo) Deactivate(ctx context.Context, serverID, userID string, kind models.ModerationKind) (bool, error) {
	query := `
		UPDATE moderation_records SET active = 0
		WHERE server_id = ? AND user_id = ? AND kind = ? AND active = 1`

	result, err := r.db.ExecContext(ctx, query, serverID, userID, string(kind))
	if err != nil {
		return false, fmt.Errorf("failed to deactivate moderation record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}
