// Package repository — MemberRepository'nin SQLite implementasyonu.
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

type sqliteMemberRepo struct {
	db database.TxQuerier
}

// NewSQLiteMemberRepo, constructor.
func NewSQLiteMemberRepo(db database.TxQuerier) MemberRepository {
	return &sqliteMemberRepo{db: db}
}

// ─── Read operasyonları ───

func (r *sqliteMemberRepo) Get(ctx context.Context, serverID, userID string) (*models.Member, error) {
	query := `
		SELECT server_id, user_id, nickname, joined_at
		FROM members WHERE server_id = ? AND user_id = ?`

	m := &models.Member{}
	err := r.db.QueryRowContext(ctx, query, serverID, userID).Scan(
		&m.ServerID, &m.UserID, &m.Nickname, &m.JoinedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

func (r *sqliteMemberRepo) Exists(ctx context.Context, serverID, userID string) (bool, error) {
	query := `SELECT 1 FROM members WHERE server_id = ? AND user_id = ? LIMIT 1`

	var dummy int
	err := r.db.QueryRowContext(ctx, query, serverID, userID).Scan(&dummy)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}

	return true, nil
}

func (r *sqliteMemberRepo) ListByServer(ctx context.Context, serverID string) ([]models.Member, error) {
	query := `
		SELECT server_id, user_id, nickname, joined_at
		FROM members WHERE server_id = ? ORDER BY joined_at ASC`

	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.ServerID, &m.UserID, &m.Nickname, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

func (r *sqliteMemberRepo) GetRoleIDs(ctx context.Context, serverID, userID string) ([]string, error) {
	query := `SELECT role_id FROM member_roles WHERE server_id = ? AND user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member role ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan role id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role ids: %w", err)
	}

	return ids, nil
}

func (r *sqliteMemberRepo) CountWithoutRole(ctx context.Context, serverID, roleID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM members m
		WHERE m.server_id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM member_roles mr
			WHERE mr.server_id = m.server_id AND mr.user_id = m.user_id AND mr.role_id = ?
		  )`

	var count int
	if err := r.db.QueryRowContext(ctx, query, serverID, roleID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count members without role: %w", err)
	}
	return count, nil
}

func (r *sqliteMemberRepo) CountPendingLegacy(ctx context.Context, serverID string) (int, error) {
	query := `SELECT COUNT(*) FROM legacy_members WHERE server_id = ? AND migrated = 0`

	var count int
	if err := r.db.QueryRowContext(ctx, query, serverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending legacy members: %w", err)
	}
	return count, nil
}

// ─── Write operasyonları ───

// Add — INSERT OR IGNORE: PRIMARY KEY (server_id, user_id) çakışırsa
// satır yazılmaz ve RowsAffected 0 olur. Eşzamanlı iki join'den ikincisi
// burada inserted=false görür; duplicate üyelik DB seviyesinde imkansızdır.
func (r *sqliteMemberRepo) Add(ctx context.Context, member *models.Member) (bool, error) {
	query := `
		INSERT OR IGNORE INTO members (server_id, user_id, nickname)
		VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, member.ServerID, member.UserID, member.Nickname)
	if err != nil {
		return false, fmt.Errorf("failed to add member: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *sqliteMemberRepo) Remove(ctx context.Context, serverID, userID string) error {
	// member_roles satırları FK cascade ile silinir.
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM members WHERE server_id = ? AND user_id = ?`, serverID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
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

func (r *sqliteMemberRepo) UpdateNickname(ctx context.Context, serverID, userID string, nickname *string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE members SET nickname = ? WHERE server_id = ? AND user_id = ?`,
		nickname, serverID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
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

func (r *sqliteMemberRepo) AssignRole(ctx context.Context, serverID, userID, roleID string) error {
	query := `INSERT OR IGNORE INTO member_roles (server_id, user_id, role_id) VALUES (?, ?, ?)`

	if _, err := r.db.ExecContext(ctx, query, serverID, userID, roleID); err != nil {
		return fmt.Errorf("failed to assign role to member: %w", err)
	}
	return nil
}

func (r *sqliteMemberRepo) RemoveRole(ctx context.Context, serverID, userID, roleID string) error {
	query := `DELETE FROM member_roles WHERE server_id = ? AND user_id = ? AND role_id = ?`

	if _, err := r.db.ExecContext(ctx, query, serverID, userID, roleID); err != nil {
		return fmt.Errorf("failed to remove role from member: %w", err)
	}
	return nil
}

// AssignRoleToAll — INSERT OR IGNORE ... SELECT: rolü taşımayan her üye
// için tek satır ekler, taşıyanlar PK çakışmasıyla sessizce atlanır.
// Tek statement olduğu için ayrıca transaction gerektirmez.
func (r *sqliteMemberRepo) AssignRoleToAll(ctx context.Context, serverID, roleID string) (int, error) {
	query := `
		INSERT OR IGNORE INTO member_roles (server_id, user_id, role_id)
		SELECT server_id, user_id, ? FROM members WHERE server_id = ?`

	result, err := r.db.ExecContext(ctx, query, roleID, serverID)
	if err != nil {
		return 0, fmt.Errorf("failed to assign role to all members: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return int(affected), nil
}

// MigrateLegacy — iki adım: kopyala (mevcut çiftleri atlayarak), işaretle.
// Çağıran WithTx içinde çalıştırır; yarıda kalırsa migrated=0 satırlar
// sonraki repair'de tekrar denenir, INSERT OR IGNORE tekrarı zararsız kılar.
func (r *sqliteMemberRepo) MigrateLegacy(ctx context.Context, serverID string) (int, error) {
	copyQuery := `
		INSERT OR IGNORE INTO members (server_id, user_id, joined_at)
		SELECT server_id, user_id, joined_at
		FROM legacy_members
		WHERE server_id = ? AND migrated = 0`

	result, err := r.db.ExecContext(ctx, copyQuery, serverID)
	if err != nil {
		return 0, fmt.Errorf("failed to migrate legacy members: %w", err)
	}

	migrated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	// Kopyalanamayanlar da işaretlenir — zaten kanonik tabloda varlar,
	// tekrar tekrar "pending" görünmeleri teşhisi kirletir.
	if _, err := r.db.ExecContext(ctx,
		`UPDATE legacy_members SET migrated = 1 WHERE server_id = ? AND migrated = 0`,
		serverID,
	); err != nil {
		return 0, fmt.Errorf("failed to mark legacy members migrated: %w", err)
	}

	return int(migrated), nil
}
