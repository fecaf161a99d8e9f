// Package models — Repair raporları.
package models

// DiagnoseReport, bir sunucunun yapısal tutarlılık teşhisi.
// NeedsRepair türetilmiş alandır — herhangi bir bulgunun varlığı.
type DiagnoseReport struct {
	NeedsRepair               bool `json:"needs_repair"`
	DefaultRoleExists         bool `json:"default_role_exists"`
	MembersWithoutDefaultRole int  `json:"members_without_default_role"`
	PendingLegacyMembers      int  `json:"pending_legacy_members"`
	MemberCountDrift          int  `json:"member_count_drift"`
}

// RepairReport, bir repair çalıştırmasının yaptığı değişiklikler.
// İkinci ardışık çalıştırmada tüm alanlar sıfır/false olmalıdır (idempotence).
type RepairReport struct {
	DefaultRoleCreated    bool `json:"default_role_created"`
	MemberRolesUpdated    int  `json:"member_roles_updated"`
	LegacyMembersMigrated int  `json:"legacy_members_migrated"`
	MemberCountCorrected  bool `json:"member_count_corrected"`
}
