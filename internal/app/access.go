package app

import (
	"jobboard/internal/common"
	"jobboard/internal/domain/user"
)

func requireAuthenticated(actor user.Identity) error {
	if actor.ID == 0 {
		return common.NewError(common.CodeUnauthorized, "authentication required", nil)
	}
	return nil
}

func requireRole(actor user.Identity, role user.Role) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}
	if actor.Role != role {
		return common.NewError(common.CodeForbidden, "insufficient permissions", nil)
	}
	return nil
}
