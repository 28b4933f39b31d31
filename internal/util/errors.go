package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameRegistered = errors.New("username already registered")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrModuleNotInCatalog  = errors.New("module not in catalog")
	ErrTaskNotInModule     = errors.New("task not defined by module")
	ErrPrerequisitesNotMet = errors.New("module prerequisites not met")
	ErrEvidenceRejected    = errors.New("completion evidence rejected")

	ErrSessionAlreadyOpen = errors.New("a session is already open for this module")

	ErrRoleNotFound  = errors.New("role not found")
	ErrRoleExists    = errors.New("role already exists")
	ErrRoleInUse     = errors.New("role still assigned to users")
	ErrBuiltInRole   = errors.New("built-in roles cannot be deleted")
)
