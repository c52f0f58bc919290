package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/mhsanaei/userhub/database/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "Alice"},
		{"  Bob  ", "Bob"},
		{"<script>", "&lt;script&gt;"},
		{"{x}", "x"},
		{"", ""},
		{strings.Repeat("é", 150), strings.Repeat("é", 100)},
	}
	for _, tt := range tests {
		got := SanitizeName(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.NotContains(t, got, "<")
		assert.NotContains(t, got, ">")
	}
}

func TestSanitizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", SanitizeEmail("  A@B.COM "))
	assert.True(t, ValidEmail(SanitizeEmail("A@B.COM")))
	assert.False(t, ValidEmail(SanitizeEmail("<a>@b.com")))
	assert.False(t, ValidEmail("not-an-email"))
}

func TestPasswordProblem(t *testing.T) {
	assert.Empty(t, PasswordProblem("abc12345"))
	assert.Contains(t, PasswordProblem("ab1"), "at least 8")
	assert.Contains(t, PasswordProblem("abcdefgh"), "digit")
	assert.Contains(t, PasswordProblem("12345678"), "letter")
	assert.Contains(t, PasswordProblem(strings.Repeat("a1", 40)), "at most 72")
}

func TestValidateUserCreate(t *testing.T) {
	ok := UserCreate{Name: "Alice", Email: "A@B.com", Password: "abc12345"}
	ok.Sanitize()
	require.NoError(t, Validate(&ok))
	assert.Equal(t, "a@b.com", ok.Email)

	bad := UserCreate{Name: "", Email: "nope", Password: "short"}
	bad.Sanitize()
	err := Validate(&bad)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	byField := map[string]FieldError{}
	for _, d := range verr.Details {
		byField[d.Field] = d
	}
	assert.Equal(t, "missing", byField["body -> name"].Type)
	assert.Equal(t, "Invalid email format", byField["body -> email"].Message)
	assert.Equal(t, "Password must be at least 8 characters long", byField["body -> password"].Message)
	assert.Equal(t, "value_error", byField["body -> password"].Type)
}

func TestValidateUserUpdate(t *testing.T) {
	empty := ""
	u := UserUpdate{Name: &empty, Email: &empty, Password: &empty}
	u.Sanitize()
	require.NoError(t, Validate(&u))
	assert.Nil(t, u.Name)
	assert.Nil(t, u.Email)
	assert.Nil(t, u.Password)

	weak := "abcdefgh"
	u = UserUpdate{Password: &weak}
	err := Validate(&u)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Password must contain at least one digit", verr.Details[0].Message)
}

func TestUserResponseEscapes(t *testing.T) {
	r := NewUserResponse(&model.User{Id: 3, Name: "<b>", Email: "a@b.com", IsAdmin: true})
	assert.Equal(t, 3, r.Id)
	assert.Equal(t, "&lt;b&gt;", r.Name)
	assert.True(t, r.IsAdmin)
}

func TestNewFieldError(t *testing.T) {
	assert.Equal(t, "query -> page", NewFieldError(LocQuery, "page", "", "").Field)
	assert.Equal(t, "body", NewFieldError(LocBody, "", "", "").Field)
}
