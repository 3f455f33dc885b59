package models

import (
	"strings"
	"time"
)

// UserRole represents the roles understood by the RBAC middleware.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleStudent UserRole = "STUDENT"
)

// StudyType is the study intensity a student picks at registration.
type StudyType string

const (
	StudyIntensive StudyType = "intensivo"
	StudyModerate  StudyType = "moderado"
	StudyLight     StudyType = "leve"
)

// DailyHours returns the planned study hours per day for the type.
func (t StudyType) DailyHours() float64 {
	switch t {
	case StudyIntensive:
		return 6.0
	case StudyModerate:
		return 4.0
	case StudyLight:
		return 2.5
	default:
		return 0
	}
}

const DefaultProgram = "Ingeniería de Sistemas"

// User is a row of the users table.
type User struct {
	ID              string     `db:"id" json:"id"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Program         string     `db:"program" json:"program"`
	CurrentSemester int        `db:"current_semester" json:"current_semester"`
	StudyType       StudyType  `db:"study_type" json:"study_type"`
	Role            UserRole   `db:"role" json:"role"`
	Active          bool       `db:"active" json:"active"`
	LastLoginAt     *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Info projects the user into the public response shape.
func (u User) Info() UserInfo {
	return UserInfo{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		FullName:        u.FullName(),
		Program:         u.Program,
		CurrentSemester: u.CurrentSemester,
		StudyType:       u.StudyType,
		Role:            u.Role,
	}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
