// Package repository — ServerRepository'nin SQLite implementasyonu.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

type sqliteServerRepo struct {
	db database.TxQuerier
}

// NewSQLiteServerRepo, constructor.
func NewSQLiteServerRepo(db database.TxQuerier) ServerRepository {
	return &sqliteServerRepo{db: db}
}

func (r *sqliteServerRepo) Create(ctx context.Context, server *models.Server) error {
	query := `
		INSERT INTO servers (id, name, owner_id, invite_code, member_count)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		server.ID, server.Name, server.OwnerID, server.InviteCode, server.MemberCount,
	).Scan(&server.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return nil
}

func (r *sqliteServerRepo) GetByID(ctx context.Context, serverID string) (*models.Server, error) {
	query := `
		SELECT id, name, owner_id, invite_code, member_count, created_at
		FROM servers WHERE id = ?`

	s := &models.Server{}
	err := r.db.QueryRowContext(ctx, query, serverID).Scan(
		&s.ID, &s.Name, &s.OwnerID, &s.InviteCode, &s.MemberCount, &s.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	return s, nil
}

func (r *sqliteServerRepo) GetByInviteCode(ctx context.Context, code string) (*models.Server, error) {
	query := `
		SELECT id, name, owner_id, invite_code, member_count, created_at
		FROM servers WHERE invite_code = ?`

	s := &models.Server{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&s.ID, &s.Name, &s.OwnerID, &s.InviteCode, &s.MemberCount, &s.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server by invite code: %w", err)
	}

	return s, nil
}

func (r *sqliteServerRepo) GetUserServers(ctx context.Context, userID string) ([]models.ServerListItem, error) {
	query := `
		SELECT s.id, s.name, s.member_count
		FROM servers s
		INNER JOIN members m ON s.id = m.server_id
		WHERE m.user_id = ?
		ORDER BY m.joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user servers: %w", err)
	}
	defer rows.Close()

	var servers []models.ServerListItem
	for rows.Next() {
		var s models.ServerListItem
		if err := rows.Scan(&s.ID, &s.Name, &s.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan server row: %w", err)
		}
		servers = append(servers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating server rows: %w", err)
	}

	return servers, nil
}

func (r *sqliteServerRepo) Delete(ctx context.Context, serverID string) error {
	// Roller, üyelikler, kanallar, moderation kayıtları FK cascade ile silinir.
	result, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE id = ?`, serverID)
	if err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteServerRepo) SetInviteCode(ctx context.Context, serverID string, code *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE servers SET invite_code = ? WHERE id = ?`, code, serverID,
	)
	if err != nil {
		return fmt.Errorf("failed to set invite code: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteServerRepo) AdjustMemberCount(ctx context.Context, serverID string, delta int) error {
	// MAX(..., 0): sayaç drift'i negatife düşürmesin — gerçek değerle
	// senkronlama repair'in işi, burada sadece taşmayı engelliyoruz.
	_, err := r.db.ExecContext(ctx,
		`UPDATE servers SET member_count = MAX(member_count + ?, 0) WHERE id = ?`,
		delta, serverID,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust member count: %w", err)
	}
	return nil
}

func (r *sqliteServerRepo) SyncMemberCount(ctx context.Context, serverID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE servers
		SET member_count = (SELECT COUNT(*) FROM members WHERE server_id = servers.id)
		WHERE id = ?
		  AND member_count != (SELECT COUNT(*) FROM members WHERE server_id = servers.id)`,
		serverID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to sync member count: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}
