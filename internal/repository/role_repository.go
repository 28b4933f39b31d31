package repository

import (
	"time"

	"techtrain_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoleRepository struct {
	DB *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{DB: db}
}

func (r *RoleRepository) FindByRoleID(roleID string) (*model.Role, error) {
	var role model.Role
	err := r.DB.Where("role_id = ?", roleID).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepository) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.DB.Order("level desc").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Create(role *model.Role) error {
	return r.DB.Create(role).Error
}

func (r *RoleRepository) Update(role *model.Role) error {
	return r.DB.Save(role).Error
}

func (r *RoleRepository) Delete(roleID string) error {
	return r.DB.Where("role_id = ?", roleID).Delete(&model.Role{}).Error
}

// ActiveOverrides returns the user's overrides still inside their validity
// window at the given instant.
func (r *RoleRepository) ActiveOverrides(userID string, now time.Time) ([]model.PermissionOverride, error) {
	var overrides []model.PermissionOverride
	err := r.DB.
		Where("user_id = ? AND (expires_at IS NULL OR expires_at > ?)", userID, now).
		Find(&overrides).Error
	return overrides, err
}

// UpsertOverride replaces any existing override for the same
// (user, permission) pair.
func (r *RoleRepository) UpsertOverride(override *model.PermissionOverride) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "permission"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"granted", "reason", "granted_by", "expires_at", "updated_at",
		}),
	}).Create(override).Error
}

func (r *RoleRepository) AppendAudit(entry *model.RoleAuditLog) error {
	return r.DB.Create(entry).Error
}

func (r *RoleRepository) AuditLog(userID string, limit int) ([]model.RoleAuditLog, error) {
	var entries []model.RoleAuditLog
	q := r.DB.Order("created_at desc").Limit(limit)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	err := q.Find(&entries).Error
	return entries, err
}
