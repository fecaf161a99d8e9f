package repository

import (
	"context"

	"github.com/akinalp/kovan/models"
)

// ChannelRepository, kanal veritabanı işlemleri.
//
// Motor kanal içeriğini yönetmez; bu repo yalnızca bootstrap için var:
// sunucu kurulumunda ve sıfır kanallı sunucuya katılımda default kanalın
// oluşturulması.
type ChannelRepository interface {
	GetAllByServer(ctx context.Context, serverID string) ([]models.Channel, error)
	CountByServer(ctx context.Context, serverID string) (int, error)
	Create(ctx context.Context, channel *models.Channel) error
}
