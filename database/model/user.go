// Package model contains the persisted entities.
package model

import "time"

// User is an account. Password holds a bcrypt hash, never plaintext.
// IsAdmin and IsUser carry no column defaults: gorm skips zero values on
// insert, so the service sets both explicitly.
type User struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"not null"`
	IsAdmin   bool      `json:"is_admin" gorm:"not null"`
	IsUser    bool      `json:"is_user" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
