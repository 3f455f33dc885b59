package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegisterRequest creates a student account together with its academic
// record. When SelectionSessionID is set the courses come from that
// finalized selection session instead of the two lists.
type RegisterRequest struct {
	FirstName          string    `json:"first_name" validate:"required,max=80"`
	LastName           string    `json:"last_name" validate:"required,max=80"`
	Email              string    `json:"email" validate:"required,email"`
	Password           string    `json:"password" validate:"required,min=6"`
	Program            string    `json:"program" validate:"omitempty,max=120"`
	CurrentSemester    int       `json:"current_semester" validate:"required,min=1,max=12"`
	StudyType          StudyType `json:"study_type" validate:"required,oneof=intensivo moderado leve"`
	ApprovedCourses    []string  `json:"approved_courses" validate:"omitempty,dive,required"`
	InProgressCourses  []string  `json:"in_progress_courses" validate:"omitempty,dive,required"`
	SelectionSessionID string    `json:"selection_session_id" validate:"omitempty,uuid"`
}

type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the issued tokens and user info. Registration
// answers with the same shape.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	IssuedAt     time.Time `json:"issued_at"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
	IP           string `json:"-"`
	UserAgent    string `json:"-"`
}

type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	FullName        string    `json:"full_name"`
	Program         string    `json:"program"`
	CurrentSemester int       `json:"current_semester"`
	StudyType       StudyType `json:"study_type"`
	Role            UserRole  `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}
