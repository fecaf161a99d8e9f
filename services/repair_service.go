// Package services — RepairService: yapısal tutarlılık teşhis ve onarımı.
//
// Moderation ve join path'leri çok adımlı yazımlar yapar; bir crash yarım
// kalmış yapı bırakabilir (default rolsüz sunucu, rolü atanmamış üye,
// kaymış sayaç, taşınmamış legacy kayıt). Repair bunların hepsinin kalıcı
// ilacıdır: VERİ SİLMEZ, yalnızca eksik yapıyı ekler — spekülatif
// çalıştırmak güvenlidir ve idempotent'tir (ikinci çalıştırma no-op).
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/akinalp/kovan/config"
	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
)

// RepairService, onarım iş mantığı interface'i.
type RepairService interface {
	// Diagnose, sunucunun yapısal tutarlılığını raporlar. Salt okunur —
	// herhangi bir üye çağırabilir.
	Diagnose(ctx context.Context, serverID string) (*models.DiagnoseReport, error)

	// Repair, eksik yapıyı tamamlar. Yalnızca sunucu sahibi çağırabilir.
	Repair(ctx context.Context, serverID, actorID string) (*models.RepairReport, error)
}

type repairService struct {
	db         *sql.DB
	serverRepo repository.ServerRepository
	memberRepo repository.MemberRepository
	roleRepo   repository.RoleRepository
	bootstrap  config.BootstrapConfig
}

// NewRepairService, RepairService implementasyonunu oluşturur.
func NewRepairService(
	db *sql.DB,
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	roleRepo repository.RoleRepository,
	bootstrap config.BootstrapConfig,
) RepairService {
	return &repairService{
		db:         db,
		serverRepo: serverRepo,
		memberRepo: memberRepo,
		roleRepo:   roleRepo,
		bootstrap:  bootstrap,
	}
}

func (s *repairService) Diagnose(ctx context.Context, serverID string) (*models.DiagnoseReport, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	report := &models.DiagnoseReport{DefaultRoleExists: true}

	defaultRole, err := s.roleRepo.GetDefaultByServer(ctx, serverID)
	if errors.Is(err, pkg.ErrNotFound) {
		report.DefaultRoleExists = false
	} else if err != nil {
		return nil, fmt.Errorf("failed to get default role: %w", err)
	}

	if defaultRole != nil {
		missing, err := s.memberRepo.CountWithoutRole(ctx, serverID, defaultRole.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count members without default role: %w", err)
		}
		report.MembersWithoutDefaultRole = missing
	} else {
		// Default rol yoksa tanım gereği hiçbir üye taşımıyor.
		members, err := s.memberRepo.ListByServer(ctx, serverID)
		if err != nil {
			return nil, fmt.Errorf("failed to list members: %w", err)
		}
		report.MembersWithoutDefaultRole = len(members)
	}

	pending, err := s.memberRepo.CountPendingLegacy(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending legacy members: %w", err)
	}
	report.PendingLegacyMembers = pending

	members, err := s.memberRepo.ListByServer(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	report.MemberCountDrift = server.MemberCount - len(members)

	report.NeedsRepair = !report.DefaultRoleExists ||
		report.MembersWithoutDefaultRole > 0 ||
		report.PendingLegacyMembers > 0 ||
		report.MemberCountDrift != 0

	return report, nil
}

func (s *repairService) Repair(ctx context.Context, serverID, actorID string) (*models.RepairReport, error) {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}

	// Repair owner'a mahsustur — ADMINISTRATOR bile yeterli değil;
	// onarım sunucunun yapısını baştan kurabilir.
	if server.OwnerID != actorID {
		return nil, fmt.Errorf("%w: only the server owner can run repair", pkg.ErrForbidden)
	}

	report := &models.RepairReport{}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		roles := repository.NewSQLiteRoleRepo(tx)
		members := repository.NewSQLiteMemberRepo(tx)
		servers := repository.NewSQLiteServerRepo(tx)

		// (a) Default rol yoksa baseline set ile oluştur.
		defaultRole, err := roles.GetDefaultByServer(ctx, serverID)
		if errors.Is(err, pkg.ErrNotFound) {
			perms, permErr := models.PermissionSetFromStrings(s.bootstrap.BaselinePermissions)
			if permErr != nil {
				return fmt.Errorf("invalid baseline permissions config: %w", permErr)
			}

			defaultRole = &models.Role{
				ID:          uuid.NewString(),
				ServerID:    serverID,
				Name:        s.bootstrap.DefaultRoleName,
				Color:       "#99aab5",
				Position:    0,
				Permissions: perms,
				IsDefault:   true,
			}
			if err := roles.Create(ctx, defaultRole); err != nil {
				return fmt.Errorf("failed to create default role: %w", err)
			}
			report.DefaultRoleCreated = true
		} else if err != nil {
			return fmt.Errorf("failed to get default role: %w", err)
		}

		// (c) Legacy üyelikleri ÖNCE taşı — sonraki adımlar taşınmış
		// üyeleri de kapsasın.
		migrated, err := members.MigrateLegacy(ctx, serverID)
		if err != nil {
			return fmt.Errorf("failed to migrate legacy members: %w", err)
		}
		report.LegacyMembersMigrated = migrated

		// (b) Default rolü taşımayan her üyeye ata ($addToSet — duplicate
		// atama imkânsız, taşıyanlar atlanır).
		updated, err := members.AssignRoleToAll(ctx, serverID, defaultRole.ID)
		if err != nil {
			return fmt.Errorf("failed to assign default role: %w", err)
		}
		report.MemberRolesUpdated = updated

		// (d) Denormalize sayacı gerçek üye sayısına eşitle.
		corrected, err := servers.SyncMemberCount(ctx, serverID)
		if err != nil {
			return fmt.Errorf("failed to sync member count: %w", err)
		}
		report.MemberCountCorrected = corrected

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[repair] completed: server=%s roleCreated=%v rolesUpdated=%d legacyMigrated=%d countFixed=%v",
		serverID, report.DefaultRoleCreated, report.MemberRolesUpdated,
		report.LegacyMembersMigrated, report.MemberCountCorrected)

	return report, nil
}
