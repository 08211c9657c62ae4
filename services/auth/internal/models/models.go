package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleStaff   Role = "STAFF"
	RoleTeacher Role = "TEACHER"
)

// ParseRole maps free text onto the closed role set. Empty input means the
// default role; ok is false for anything outside the set.
func ParseRole(s string) (Role, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return RoleTeacher, true
	}
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleStaff, RoleTeacher:
		return r, true
	}
	return "", false
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Email        string    `gorm:"uniqueIndex;not null;size:254" json:"email"`
	PasswordHash string    `gorm:"not null"                   json:"-"`
	Role         Role      `gorm:"not null;size:16"           json:"role"`
	DisplayName  string    `gorm:"size:128"                   json:"display_name"`
	CreatedAt    time.Time `gorm:"not null"                   json:"created_at"`
}
