// Package service holds the business logic behind the HTTP handlers and the
// CLI: the user directory and the access guards.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mhsanaei/userhub/database"
	"github.com/mhsanaei/userhub/database/model"
	"github.com/mhsanaei/userhub/logger"
	"github.com/mhsanaei/userhub/util/common"
	"github.com/mhsanaei/userhub/util/crypto"
	"github.com/mhsanaei/userhub/util/metrics"
	"github.com/mhsanaei/userhub/util/token"
	"github.com/mhsanaei/userhub/web/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	msgUserNotFound     = "User not found"
	msgEmailRegistered  = "Email already registered"
	msgEmailExists      = "Email already exists"
	msgInvalidCreds     = "Invalid credentials"
	msgInvalidToken     = "Could not validate credentials"
	likeEscapeCharacter = `\`
)

// SortFields are the columns accepted by Sorted.
var SortFields = []string{"id", "name", "email", "is_admin"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// UserService is the user directory. It owns persistence of users, password
// hashing on every write and token issue/verification.
type UserService struct {
	tokens *token.Service
}

func NewUserService(tokens *token.Service) *UserService {
	return &UserService{tokens: tokens}
}

func (s *UserService) db(ctx context.Context) *gorm.DB {
	return database.GetDB().WithContext(ctx)
}

// Register creates a regular account.
func (s *UserService) Register(ctx context.Context, in entity.UserCreate) (*model.User, error) {
	return s.insert(ctx, in.Name, in.Email, in.Password, false)
}

// CreateDirect creates a regular account without authentication. The
// password is hashed exactly as in Register.
func (s *UserService) CreateDirect(ctx context.Context, in entity.UserCreate) (*model.User, error) {
	return s.insert(ctx, in.Name, in.Email, in.Password, false)
}

// CreateAdmin creates an administrator account.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.insert(ctx, name, email, password, true)
}

func (s *UserService) insert(ctx context.Context, name, email, password string, admin bool) (*model.User, error) {
	hashed, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hashed,
		IsAdmin:  admin,
		IsUser:   !admin,
	}
	err = s.db(ctx).Create(user).Error
	if database.IsDuplicateKey(err) {
		return nil, common.WrapHTTPError(common.ErrConflict, msgEmailRegistered, err)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the credentials and returns a fresh token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.FindByEmail(ctx, email)
	if errors.Is(err, common.ErrNotFound) {
		metrics.RecordFailedLogin()
		return "", common.NewHTTPError(common.ErrUnauthorized, msgInvalidCreds)
	}
	if err != nil {
		return "", err
	}
	if !crypto.CheckPasswordHash(user.Password, password) {
		metrics.RecordFailedLogin()
		logger.Debugf("failed login for user %d", user.Id)
		return "", common.NewHTTPError(common.ErrUnauthorized, msgInvalidCreds)
	}
	return s.tokens.Issue(user.Id)
}

// IssueToken signs a token for an existing user.
func (s *UserService) IssueToken(ctx context.Context, id int) (string, error) {
	if _, err := s.FindById(ctx, id); err != nil {
		return "", err
	}
	return s.tokens.Issue(id)
}

// ResolveCaller verifies a bearer token and loads its user. A valid token for
// a deleted user is rejected like a bad one.
func (s *UserService) ResolveCaller(ctx context.Context, tok string) (*model.User, error) {
	id, err := s.tokens.Verify(tok)
	if err != nil {
		reason := token.Reason(err)
		metrics.RecordTokenVerifyFailure(reason)
		logger.Debugf("token rejected: %s", reason)
		return nil, common.WrapHTTPError(common.ErrUnauthorized, msgInvalidToken, err)
	}
	user, err := s.FindById(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		metrics.RecordTokenVerifyFailure("unknown_user")
		return nil, common.WrapHTTPError(common.ErrUnauthorized, msgInvalidToken, err)
	}
	return user, err
}

func (s *UserService) FindById(ctx context.Context, id int) (*model.User, error) {
	user := &model.User{}
	err := s.db(ctx).Where("id = ?", id).First(user).Error
	if database.IsNotFound(err) {
		return nil, common.WrapHTTPError(common.ErrNotFound, msgUserNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	err := s.db(ctx).Where("email = ?", strings.ToLower(email)).First(user).Error
	if database.IsNotFound(err) {
		return nil, common.WrapHTTPError(common.ErrNotFound, msgUserNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies the non-nil fields of in. A new password is hashed; a new
// email must stay unique.
func (s *UserService) Update(ctx context.Context, id int, in entity.UserUpdate) (*model.User, error) {
	user, err := s.FindById(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.Name != nil {
		changes["name"] = *in.Name
	}
	if in.Email != nil {
		changes["email"] = *in.Email
	}
	if in.Password != nil {
		hashed, err := crypto.HashPasswordAsBcrypt(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		changes["password"] = hashed
	}
	if len(changes) == 0 {
		return user, nil
	}

	err = s.db(ctx).Model(user).Updates(changes).Error
	if database.IsDuplicateKey(err) {
		return nil, common.WrapHTTPError(common.ErrConflict, msgEmailExists, err)
	}
	if err != nil {
		return nil, err
	}
	return s.FindById(ctx, id)
}

// SetPassword replaces the password of the user with the given email.
func (s *UserService) SetPassword(ctx context.Context, email, password string) error {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	hashed, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db(ctx).Model(user).Update("password", hashed).Error
}

func (s *UserService) Delete(ctx context.Context, id int) error {
	result := s.db(ctx).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.NewHTTPError(common.ErrNotFound, msgUserNotFound)
	}
	return nil
}

// List returns at most limit users after skipping offset, by id.
func (s *UserService) List(ctx context.Context, offset, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// Search filters by a case-insensitive name substring and an exact email.
// Empty filters are ignored.
func (s *UserService) Search(ctx context.Context, name, email string) ([]model.User, error) {
	q := s.db(ctx).Order("id ASC")
	if name != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(name)) + "%"
		q = q.Where("LOWER(name) LIKE ? ESCAPE ?", pattern, likeEscapeCharacter)
	}
	if email != "" {
		q = q.Where("email = ?", strings.ToLower(email))
	}
	var users []model.User
	err := q.Find(&users).Error
	return users, err
}

// ParseSort splits "field" or "-field" and checks field against SortFields.
func ParseSort(sort string) (field string, desc bool, err error) {
	field, desc = strings.CutPrefix(sort, "-")
	for _, f := range SortFields {
		if f == field {
			return field, desc, nil
		}
	}
	return "", false, common.NewHTTPError(common.ErrValidation,
		"sort must be one of "+strings.Join(SortFields, ", ")+", optionally prefixed with -")
}

// Sorted returns all users ordered by field. field must come from ParseSort.
func (s *UserService) Sorted(ctx context.Context, field string, desc bool) ([]model.User, error) {
	var users []model.User
	err := s.db(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: field}, Desc: desc}).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// Count returns the number of users.
func (s *UserService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
