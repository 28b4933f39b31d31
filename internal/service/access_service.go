package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"techtrain_backend/internal/model"
	"techtrain_backend/internal/repository"
	"techtrain_backend/internal/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// builtInRoles is seeded once at first run. These roles are protected from
// deletion.
var builtInRoles = []struct {
	ID          string
	Name        string
	Description string
	Level       int
	Permissions []string
}{
	{
		ID: model.RoleAdmin, Name: "Administrator", Level: 100,
		Description: "Full system access",
		Permissions: []string{
			"user.create", "user.read", "user.update", "user.delete",
			"module.create", "module.read", "module.update", "module.delete",
			"report.generate", "report.export",
			"system.config", "system.backup",
			"training.view_all", "training.manage_all",
		},
	},
	{
		ID: model.RoleInstructor, Name: "Instructor", Level: 50,
		Description: "Can manage training content and view reports",
		Permissions: []string{
			"user.read", "user.update_own",
			"module.create", "module.read", "module.update",
			"report.generate", "report.export",
			"training.view_all", "training.evaluate",
		},
	},
	{
		ID: model.RoleTrainee, Name: "Trainee", Level: 10,
		Description: "Can access training modules and view own progress",
		Permissions: []string{
			"user.read_own", "user.update_own",
			"module.read",
			"training.view_own", "training.participate",
		},
	},
	{
		ID: model.RoleGuest, Name: "Guest", Level: 1,
		Description: "Limited read-only access",
		Permissions: []string{
			"module.read",
			"training.view_demo",
		},
	},
}

// AccessService resolves whether a principal may perform an action: the
// role's declared permission set, plus active grant overrides, minus
// active revoke overrides, with wildcard matching over dot segments.
type AccessService struct {
	RoleRepo *repository.RoleRepository
	UserRepo *repository.UserRepository
	Log      *zap.Logger

	now func() time.Time
}

func NewAccessService(roleRepo *repository.RoleRepository, userRepo *repository.UserRepository, log *zap.Logger) *AccessService {
	return &AccessService{RoleRepo: roleRepo, UserRepo: userRepo, Log: log, now: time.Now}
}

// SeedBuiltInRoles inserts any missing built-in role. Existing rows are
// left untouched so local permission edits survive restarts.
func (s *AccessService) SeedBuiltInRoles() error {
	for _, def := range builtInRoles {
		_, err := s.RoleRepo.FindByRoleID(def.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		role := model.Role{
			RoleID:      def.ID,
			Name:        def.Name,
			Description: def.Description,
			Level:       def.Level,
			BuiltIn:     true,
		}
		role.SetPermissionList(def.Permissions)
		if err := s.RoleRepo.Create(&role); err != nil {
			return err
		}
		s.Log.Info("seeded built-in role", zap.String("role", def.ID))
	}
	return nil
}

// PermissionsFor returns the user's effective permission set.
func (s *AccessService) PermissionsFor(userID string) (map[string]bool, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	perms := make(map[string]bool)
	role, err := s.RoleRepo.FindByRoleID(user.RoleID)
	if err == nil {
		for _, p := range role.PermissionList() {
			perms[p] = true
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	overrides, err := s.RoleRepo.ActiveOverrides(userID, s.now())
	if err != nil {
		return nil, err
	}
	// Overrides are applied after role permissions and take precedence.
	for _, o := range overrides {
		if o.Granted {
			perms[o.Permission] = true
		} else {
			delete(perms, o.Permission)
		}
	}
	return perms, nil
}

// PermissionList is PermissionsFor flattened and sorted, for API output.
func (s *AccessService) PermissionList(userID string) ([]string, error) {
	perms, err := s.PermissionsFor(userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(perms))
	for p := range perms {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// Has checks an exact match first, then walks the permission's dot
// segments from most to least specific testing the wildcard form at each
// level: "module.create" is satisfied by "module.*".
func (s *AccessService) Has(userID, permission string) (bool, error) {
	perms, err := s.PermissionsFor(userID)
	if err != nil {
		return false, err
	}
	return matchPermission(perms, permission), nil
}

func matchPermission(perms map[string]bool, permission string) bool {
	if perms[permission] {
		return true
	}
	parts := strings.Split(permission, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		wildcard := strings.Join(parts[:i], ".") + ".*"
		if perms[wildcard] {
			return true
		}
	}
	return false
}

// GrantPermission adds a per-user grant override with an optional expiry.
func (s *AccessService) GrantPermission(userID, permission, grantedBy, reason string, expiresAt *time.Time) error {
	override := &model.PermissionOverride{
		UserID:     userID,
		Permission: permission,
		Granted:    true,
		Reason:     reason,
		GrantedBy:  grantedBy,
		ExpiresAt:  expiresAt,
	}
	if err := s.RoleRepo.UpsertOverride(override); err != nil {
		return err
	}
	return s.RoleRepo.AppendAudit(&model.RoleAuditLog{
		UserID:      userID,
		Action:      model.AuditPermissionGranted,
		Permission:  permission,
		PerformedBy: grantedBy,
		Details:     reason,
	})
}

// RevokePermission adds a per-user revoke override.
func (s *AccessService) RevokePermission(userID, permission, revokedBy, reason string) error {
	override := &model.PermissionOverride{
		UserID:     userID,
		Permission: permission,
		Granted:    false,
		Reason:     reason,
		GrantedBy:  revokedBy,
	}
	if err := s.RoleRepo.UpsertOverride(override); err != nil {
		return err
	}
	return s.RoleRepo.AppendAudit(&model.RoleAuditLog{
		UserID:      userID,
		Action:      model.AuditPermissionRevoked,
		Permission:  permission,
		PerformedBy: revokedBy,
		Details:     reason,
	})
}

type RoleRequest struct {
	RoleID      string   `json:"roleId" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
	Level       int      `json:"level"`
}

func (s *AccessService) Roles() ([]model.Role, error) {
	return s.RoleRepo.FindAll()
}

func (s *AccessService) CreateRole(req RoleRequest, performedBy string) (*model.Role, error) {
	_, err := s.RoleRepo.FindByRoleID(req.RoleID)
	if err == nil {
		return nil, util.ErrRoleExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role := model.Role{
		RoleID:      req.RoleID,
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
	}
	role.SetPermissionList(req.Permissions)
	if err := s.RoleRepo.Create(&role); err != nil {
		return nil, err
	}
	if err := s.RoleRepo.AppendAudit(&model.RoleAuditLog{
		Action:      model.AuditRoleCreated,
		RoleID:      req.RoleID,
		PerformedBy: performedBy,
	}); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *AccessService) UpdateRole(roleID string, req RoleRequest, performedBy string) (*model.Role, error) {
	role, err := s.RoleRepo.FindByRoleID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrRoleNotFound
		}
		return nil, err
	}

	role.Name = req.Name
	role.Description = req.Description
	role.Level = req.Level
	if req.Permissions != nil {
		role.SetPermissionList(req.Permissions)
	}
	if err := s.RoleRepo.Update(role); err != nil {
		return nil, err
	}
	if err := s.RoleRepo.AppendAudit(&model.RoleAuditLog{
		Action:      model.AuditRoleUpdated,
		RoleID:      roleID,
		PerformedBy: performedBy,
	}); err != nil {
		return nil, err
	}
	return role, nil
}

// DeleteRole rejects built-in roles and roles still assigned to any user.
func (s *AccessService) DeleteRole(roleID, performedBy string) error {
	role, err := s.RoleRepo.FindByRoleID(roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoleNotFound
		}
		return err
	}
	if role.BuiltIn {
		return util.ErrBuiltInRole
	}

	assigned, err := s.UserRepo.CountByRole(roleID)
	if err != nil {
		return err
	}
	if assigned > 0 {
		return util.ErrRoleInUse
	}

	if err := s.RoleRepo.Delete(roleID); err != nil {
		return err
	}
	return s.RoleRepo.AppendAudit(&model.RoleAuditLog{
		Action:      model.AuditRoleDeleted,
		RoleID:      roleID,
		PerformedBy: performedBy,
	})
}

// AssignRole changes a user's primary role.
func (s *AccessService) AssignRole(userID, roleID, performedBy string) error {
	if _, err := s.RoleRepo.FindByRoleID(roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrRoleNotFound
		}
		return err
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}

	user.RoleID = roleID
	if err := s.UserRepo.Update(user); err != nil {
		return err
	}
	return s.RoleRepo.AppendAudit(&model.RoleAuditLog{
		UserID:      userID,
		Action:      model.AuditRoleAssigned,
		RoleID:      roleID,
		PerformedBy: performedBy,
	})
}

func (s *AccessService) AuditLog(userID string, limit int) ([]model.RoleAuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.RoleRepo.AuditLog(userID, limit)
}
