// Package models — Permission/PermissionSet domain tipleri.
//
// Her yetki isimli bir capability string'idir ("KICK_MEMBERS" gibi).
// Bir rolün yetkileri PermissionSet olarak tutulur ve DB'de JSON array
// olarak saklanır — persisted contract string-keyed flag'lerdir.
//
// ADMINISTRATOR özel durumdur: set'te varsa diğer tüm yetkileri kapsar.
// Kontrol her zaman Has() üzerinden yapılır, asla doğrudan map lookup ile —
// yoksa administrator kısayolu atlanır.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// Permission, isimli tek bir capability.
type Permission string

// Tanımlı capability'ler. DB'de ve API'de bu string değerler görünür —
// yeniden adlandırmak persisted veriyi kırar.
const (
	PermAdministrator   Permission = "ADMINISTRATOR"
	PermManageServer    Permission = "MANAGE_SERVER"
	PermManageRoles     Permission = "MANAGE_ROLES"
	PermManageChannels  Permission = "MANAGE_CHANNELS"
	PermKickMembers     Permission = "KICK_MEMBERS"
	PermBanMembers      Permission = "BAN_MEMBERS"
	PermMuteMembers     Permission = "MUTE_MEMBERS"
	PermManageNicknames Permission = "MANAGE_NICKNAMES"
	PermViewChannels    Permission = "VIEW_CHANNELS"
	PermReadMessages    Permission = "READ_MESSAGES"
	PermSendMessages    Permission = "SEND_MESSAGES"
	PermCreateInvites   Permission = "CREATE_INVITES"
	PermChangeNickname  Permission = "CHANGE_NICKNAME"
)

// allPermissions, tanımlı tüm capability'lerin listesi.
// Yeni bir Perm* sabiti eklendiğinde buraya da eklenir.
var allPermissions = []Permission{
	PermAdministrator,
	PermManageServer,
	PermManageRoles,
	PermManageChannels,
	PermKickMembers,
	PermBanMembers,
	PermMuteMembers,
	PermManageNicknames,
	PermViewChannels,
	PermReadMessages,
	PermSendMessages,
	PermCreateInvites,
	PermChangeNickname,
}

// PermissionSet, isimli capability'lerden oluşan bir küme.
//
// map[Permission]struct{} yerine map[Permission]bool kullanıyoruz çünkü
// JSON (de)serialization ve test karşılaştırmaları daha okunaklı oluyor;
// false değerli key set'te yok sayılır.
type PermissionSet map[Permission]bool

// NewPermissionSet, verilen capability'lerden bir set oluşturur.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// PermissionSetFromStrings, config'den gelen string listesinden set oluşturur.
// Tanımsız capability isimleri hata döner — typo'lu config sessizce geniş
// veya dar bir baseline'a yol açmamalı.
func PermissionSetFromStrings(names []string) (PermissionSet, error) {
	set := make(PermissionSet, len(names))
	for _, name := range names {
		p := Permission(name)
		if !isKnownPermission(p) {
			return nil, fmt.Errorf("unknown permission: %q", name)
		}
		set[p] = true
	}
	return set, nil
}

// AllPermissions, tüm capability'leri içeren yeni bir set döner.
// Owner ve administrator değerlendirmelerinde kullanılır.
func AllPermissions() PermissionSet {
	return NewPermissionSet(allPermissions...)
}

func isKnownPermission(p Permission) bool {
	for _, known := range allPermissions {
		if p == known {
			return true
		}
	}
	return false
}

// Has, belirli bir yetkinin var olup olmadığını kontrol eder.
// ADMINISTRATOR her şeye izin verir.
func (s PermissionSet) Has(perm Permission) bool {
	if s == nil {
		return false
	}
	if s[PermAdministrator] {
		return true
	}
	return s[perm]
}

// HasAny, verilen yetkilerden en az birinin var olup olmadığını kontrol eder.
func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Union, iki set'in birleşimini yeni bir set olarak döner.
// Effective permission hesabı: üyenin tüm rollerinin set'leri union'lanır.
func (s PermissionSet) Union(other PermissionSet) PermissionSet {
	out := make(PermissionSet, len(s)+len(other))
	for p, ok := range s {
		if ok {
			out[p] = true
		}
	}
	for p, ok := range other {
		if ok {
			out[p] = true
		}
	}
	return out
}

// Names, set'teki capability'leri sıralı string listesi olarak döner.
// Sıralama deterministik JSON output ve stabil testler için.
func (s PermissionSet) Names() []string {
	names := make([]string, 0, len(s))
	for p, ok := range s {
		if ok {
			names = append(names, string(p))
		}
	}
	sort.Strings(names)
	return names
}

// MarshalJSON, set'i sıralı string array olarak serialize eder.
func (s PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

// UnmarshalJSON, string array'den set oluşturur.
// Tanınmayan capability'ler atlanmaz, olduğu gibi korunur — eski bir
// binary yeni eklenen bir yetkiyi silmemeli (forward compatibility).
func (s *PermissionSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set := make(PermissionSet, len(names))
	for _, name := range names {
		set[Permission(name)] = true
	}
	*s = set
	return nil
}

// Value, database/sql driver.Valuer — set'i TEXT kolonuna JSON olarak yazar.
func (s PermissionSet) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal permission set: %w", err)
	}
	return string(data), nil
}

// Scan, database/sql sql.Scanner — TEXT kolonundan set okur.
// NULL veya boş değer boş set olarak yorumlanır, asla nil-panic olmaz:
// store boundary'de bir kez normalize edilir, call site'lar kontrol etmez.
func (s *PermissionSet) Scan(src any) error {
	if src == nil {
		*s = PermissionSet{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into PermissionSet", src)
	}

	if len(data) == 0 {
		*s = PermissionSet{}
		return nil
	}
	return s.UnmarshalJSON(data)
}
