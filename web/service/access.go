package service

import (
	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/util/common"
)

// RequireAdmin lets only admins through.
func RequireAdmin(caller *model.User) (*model.User, error) {
	if caller == nil {
		return nil, common.NewHTTPError(common.ErrUnauthorized, "Not authenticated")
	}
	if !caller.IsAdmin {
		return nil, common.NewHTTPError(common.ErrForbidden, "Admins only")
	}
	return caller, nil
}

// RequireSelfOrUser lets a regular user act on their own record only. Both
// conditions must hold; admins get no implicit pass.
func RequireSelfOrUser(caller *model.User, targetID int) (*model.User, error) {
	if caller == nil {
		return nil, common.NewHTTPError(common.ErrUnauthorized, "Not authenticated")
	}
	if !caller.IsUser || caller.Id != targetID {
		return nil, common.NewHTTPError(common.ErrForbidden, "You do not have access")
	}
	return caller, nil
}
