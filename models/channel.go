// Package models — Channel domain modeli.
//
// Bu motor kanal içeriğiyle ilgilenmez; kanal kaydı sadece bootstrap
// invariant'ı için var: her sunucunun en az bir text kanalı olmalı,
// join path'i sıfır kanallı sunucuda default kanalı oluşturur.
package models

import "time"

// Channel, bir sunucu text kanalını temsil eder.
type Channel struct {
	ID        string    `json:"id"`
	ServerID  string    `json:"server_id"`
	Name      string    `json:"name"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
