package service

import (
	"testing"

	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		caller  *model.User
		wantErr error
	}{
		{"admin", &model.User{Id: 1, IsAdmin: true}, nil},
		{"admin and user", &model.User{Id: 1, IsAdmin: true, IsUser: true}, nil},
		{"plain user", &model.User{Id: 2, IsUser: true}, common.ErrForbidden},
		{"no roles", &model.User{Id: 3}, common.ErrForbidden},
		{"anonymous", nil, common.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequireAdmin(tt.caller)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Same(t, tt.caller, got)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestRequireSelfOrUser(t *testing.T) {
	tests := []struct {
		name    string
		caller  *model.User
		target  int
		wantErr error
	}{
		{"user on self", &model.User{Id: 5, IsUser: true}, 5, nil},
		{"user on other", &model.User{Id: 5, IsUser: true}, 6, common.ErrForbidden},
		{"non-user on self", &model.User{Id: 5}, 5, common.ErrForbidden},
		{"non-user on other", &model.User{Id: 5}, 6, common.ErrForbidden},
		{"admin on other", &model.User{Id: 1, IsAdmin: true}, 6, common.ErrForbidden},
		{"admin non-user on self", &model.User{Id: 1, IsAdmin: true}, 1, common.ErrForbidden},
		{"anonymous", nil, 1, common.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequireSelfOrUser(tt.caller, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				assert.Same(t, tt.caller, got)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, common.StatusCode(tt.wantErr), common.StatusCode(err))
		})
	}
}

func TestGuardMessages(t *testing.T) {
	_, err := RequireAdmin(&model.User{Id: 2, IsUser: true})
	assert.Equal(t, "Admins only", common.ClientMessage(err))

	_, err = RequireSelfOrUser(&model.User{Id: 2, IsUser: true}, 3)
	assert.Equal(t, "You do not have access", common.ClientMessage(err))
}
