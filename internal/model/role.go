package model

import (
	"encoding/json"
	"time"
)

// Built-in role ids seeded at first run. They cannot be deleted.
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleTrainee    = "trainee"
	RoleGuest      = "guest"
)

type Role struct {
	BaseModel
	RoleID      string `gorm:"size:50;unique;not null" json:"roleId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	// Permissions is a JSON-encoded string array. Dot-namespaced,
	// wildcard-capable (e.g. "module.*").
	Permissions string `gorm:"type:text;not null" json:"-"`
	Level       int    `gorm:"default:0" json:"level"`
	BuiltIn     bool   `gorm:"default:false" json:"builtIn"`
}

func (Role) TableName() string {
	return "roles"
}

func (r *Role) PermissionList() []string {
	var perms []string
	if err := json.Unmarshal([]byte(r.Permissions), &perms); err != nil {
		return nil
	}
	return perms
}

func (r *Role) SetPermissionList(perms []string) {
	data, _ := json.Marshal(perms)
	r.Permissions = string(data)
}

// PermissionOverride is a per-user grant or revoke of a single permission,
// applied after role permissions for the duration of its validity window.
type PermissionOverride struct {
	BaseModel
	UserID     string     `gorm:"size:36;index;uniqueIndex:idx_override_user_perm;not null" json:"userId"`
	Permission string     `gorm:"size:100;uniqueIndex:idx_override_user_perm;not null" json:"permission"`
	Granted    bool       `gorm:"default:true" json:"granted"`
	Reason     string     `gorm:"type:text" json:"reason"`
	GrantedBy  string     `gorm:"size:36" json:"grantedBy"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

func (PermissionOverride) TableName() string {
	return "permission_overrides"
}

func (o *PermissionOverride) Active(now time.Time) bool {
	return o.ExpiresAt == nil || o.ExpiresAt.After(now)
}

type RoleAuditAction string

const (
	AuditRoleAssigned      RoleAuditAction = "role_assigned"
	AuditRoleCreated       RoleAuditAction = "role_created"
	AuditRoleUpdated       RoleAuditAction = "role_updated"
	AuditRoleDeleted       RoleAuditAction = "role_deleted"
	AuditPermissionGranted RoleAuditAction = "permission_granted"
	AuditPermissionRevoked RoleAuditAction = "permission_revoked"
)

type RoleAuditLog struct {
	BaseModel
	UserID      string          `gorm:"size:36;index" json:"userId"`
	Action      RoleAuditAction `gorm:"size:50;not null" json:"action"`
	RoleID      string          `gorm:"size:50" json:"roleId"`
	Permission  string          `gorm:"size:100" json:"permission"`
	PerformedBy string          `gorm:"size:36" json:"performedBy"`
	Details     string          `gorm:"type:text" json:"details"`
}

func (RoleAuditLog) TableName() string {
	return "role_audit_log"
}
