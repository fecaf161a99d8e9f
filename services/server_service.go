// Package services — ServerService: sunucu yaşam döngüsü iş mantığı.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/akinalp/kovan/config"
	"github.com/akinalp/kovan/database"
	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
	"github.com/akinalp/kovan/repository"
	"github.com/akinalp/kovan/ws"
)

// ServerService, sunucu yönetimi iş mantığı interface'i.
type ServerService interface {
	// Create, yeni sunucu kurar: sunucu kaydı + davet kodu + default rol
	// + owner üyeliği + default kanal, hepsi tek transaction'da.
	Create(ctx context.Context, ownerID string, req *models.CreateServerRequest) (*models.Server, error)

	Get(ctx context.Context, serverID string) (*models.Server, error)
	GetUserServers(ctx context.Context, userID string) ([]models.ServerListItem, error)

	// Delete, sunucuyu kalıcı siler. Yalnızca owner çağırabilir.
	Delete(ctx context.Context, serverID, actorID string) error

	// Leave, üyeyi sunucudan çıkarır. Owner ayrılamaz — sunucuyu siler.
	Leave(ctx context.Context, serverID, userID string) error
}

type serverService struct {
	db         *sql.DB
	serverRepo repository.ServerRepository
	memberRepo repository.MemberRepository
	bootstrap  config.BootstrapConfig
	hub        ws.EventPublisher
}

// NewServerService, ServerService implementasyonunu oluşturur.
func NewServerService(
	db *sql.DB,
	serverRepo repository.ServerRepository,
	memberRepo repository.MemberRepository,
	bootstrap config.BootstrapConfig,
	hub ws.EventPublisher,
) ServerService {
	return &serverService{
		db:         db,
		serverRepo: serverRepo,
		memberRepo: memberRepo,
		bootstrap:  bootstrap,
		hub:        hub,
	}
}

func (s *serverService) Create(ctx context.Context, ownerID string, req *models.CreateServerRequest) (*models.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	code, err := GenerateInviteCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite code: %w", err)
	}

	perms, err := models.PermissionSetFromStrings(s.bootstrap.BaselinePermissions)
	if err != nil {
		return nil, fmt.Errorf("invalid baseline permissions config: %w", err)
	}

	server := &models.Server{
		ID:          uuid.NewString(),
		Name:        req.Name,
		OwnerID:     ownerID,
		InviteCode:  &code,
		MemberCount: 1,
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		servers := repository.NewSQLiteServerRepo(tx)
		roles := repository.NewSQLiteRoleRepo(tx)
		members := repository.NewSQLiteMemberRepo(tx)
		channels := repository.NewSQLiteChannelRepo(tx)

		if err := servers.Create(ctx, server); err != nil {
			return err
		}

		// Default rol kurulumdan itibaren var — join path'inin sentez
		// yoluna hiç düşmemesi normal akıştır.
		if err := roles.Create(ctx, &models.Role{
			ID:          uuid.NewString(),
			ServerID:    server.ID,
			Name:        s.bootstrap.DefaultRoleName,
			Color:       "#99aab5",
			Position:    0,
			Permissions: perms,
			IsDefault:   true,
		}); err != nil {
			return err
		}

		// Owner da üyedir — üye listesinde görünür. Yetkileri üyelikten
		// değil ownership'ten gelir.
		if _, err := members.Add(ctx, &models.Member{
			ServerID: server.ID,
			UserID:   ownerID,
		}); err != nil {
			return err
		}

		return channels.Create(ctx, &models.Channel{
			ID:       uuid.NewString(),
			ServerID: server.ID,
			Name:     s.bootstrap.DefaultChannelName,
			Position: 0,
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastToUser(ownerID, ws.Event{Op: ws.OpServerCreate, Data: ws.ServerEventData{
		ServerID: server.ID,
		Name:     server.Name,
	}})

	log.Printf("[server] created: id=%s owner=%s", server.ID, ownerID)
	return server, nil
}

func (s *serverService) Get(ctx context.Context, serverID string) (*models.Server, error) {
	return s.serverRepo.GetByID(ctx, serverID)
}

func (s *serverService) GetUserServers(ctx context.Context, userID string) ([]models.ServerListItem, error) {
	return s.serverRepo.GetUserServers(ctx, userID)
}

func (s *serverService) Delete(ctx context.Context, serverID, actorID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return fmt.Errorf("failed to get server: %w", err)
	}

	if server.OwnerID != actorID {
		return fmt.Errorf("%w: only the server owner can delete the server", pkg.ErrForbidden)
	}

	// FK cascade roller, üyelikler, kanallar ve moderasyon kayıtlarını
	// birlikte düşürür.
	if err := s.serverRepo.Delete(ctx, serverID); err != nil {
		return fmt.Errorf("failed to delete server: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpServerDelete, Data: ws.ServerEventData{
		ServerID: serverID,
	}})

	log.Printf("[server] deleted: id=%s actor=%s", serverID, actorID)
	return nil
}

func (s *serverService) Leave(ctx context.Context, serverID, userID string) error {
	server, err := s.serverRepo.GetByID(ctx, serverID)
	if err != nil {
		return fmt.Errorf("failed to get server: %w", err)
	}

	if server.OwnerID == userID {
		return fmt.Errorf("%w: the owner cannot leave; delete the server instead", pkg.ErrBadRequest)
	}

	exists, err := s.memberRepo.Exists(ctx, serverID, userID)
	if err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: not a member of this server", pkg.ErrNotFound)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		members := repository.NewSQLiteMemberRepo(tx)
		servers := repository.NewSQLiteServerRepo(tx)

		if err := members.Remove(ctx, serverID, userID); err != nil {
			return err
		}
		return servers.AdjustMemberCount(ctx, serverID, -1)
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberLeave, Data: ws.MemberEventData{
		ServerID: serverID,
		UserID:   userID,
	}})

	log.Printf("[server] member left: server=%s user=%s", serverID, userID)
	return nil
}
