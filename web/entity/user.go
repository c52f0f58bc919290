package entity

import (
	"html"

	"github.com/mhsanaei/userhub/database/model"
)

// UserCreate is the body of registration and direct creation.
type UserCreate struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,useremail"`
	Password string `json:"password" validate:"required,password"`
}

func (u *UserCreate) Sanitize() {
	u.Name = SanitizeName(u.Name)
	u.Email = SanitizeEmail(u.Email)
}

// Finish truncates the email once the format check passed.
func (u *UserCreate) Finish() {
	u.Email = truncate(u.Email, MaxEmailLength)
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,useremail"`
	Password string `json:"password" validate:"required"`
}

func (u *UserLogin) Sanitize() {
	u.Email = SanitizeEmail(u.Email)
}

// UserUpdate is a partial update. Nil or empty fields are left unchanged.
type UserUpdate struct {
	Name     *string `json:"name" validate:"omitempty"`
	Email    *string `json:"email" validate:"omitempty,useremail"`
	Password *string `json:"password" validate:"omitempty,password"`
}

func (u *UserUpdate) Sanitize() {
	u.Name = sanitizeOptional(u.Name, SanitizeName)
	u.Email = sanitizeOptional(u.Email, SanitizeEmail)
	if u.Password != nil && *u.Password == "" {
		u.Password = nil
	}
}

// sanitizeOptional applies fn and drops values that end up empty.
func sanitizeOptional(p *string, fn func(string) string) *string {
	if p == nil {
		return nil
	}
	s := fn(*p)
	if s == "" {
		return nil
	}
	return &s
}

func (u *UserUpdate) Finish() {
	if u.Email != nil {
		s := truncate(*u.Email, MaxEmailLength)
		u.Email = &s
	}
}

// UserResponse is the public view of a user. Name and email are HTML-escaped.
type UserResponse struct {
	Id      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		Id:      u.Id,
		Name:    html.EscapeString(u.Name),
		Email:   html.EscapeString(u.Email),
		IsAdmin: u.IsAdmin,
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewBearerToken(tok string) Token {
	return Token{AccessToken: tok, TokenType: "bearer"}
}
