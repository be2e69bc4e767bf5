package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleEmployer Role = "employer"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleEmployer
}

// LandingPath is where a freshly logged-in user is sent.
func (r Role) LandingPath() string {
	switch r {
	case RoleStudent:
		return "/student-dashboard"
	case RoleEmployer:
		return "/employer-dashboard"
	default:
		return "/"
	}
}

// Session is the cached credential pair. It mirrors exactly what the browser keeps.
type Session struct {
	Token string `json:"-"`
	Role  Role   `json:"userType"`
}

// Present reports whether a credential is cached.
func (s Session) Present() bool {
	return s.Token != ""
}

// TokenClaims are read from the bearer token without verification. They never grant access.
type TokenClaims struct {
	Subject   string    `json:"sub,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

type User struct {
	ID        ID     `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  Role   `json:"userType"`
}

func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

type Credentials struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type StudentDetails struct {
	University     string  `json:"university,omitempty"`
	Major          string  `json:"major,omitempty"`
	GraduationDate string  `json:"graduationDate,omitempty"`
	GPA            float64 `json:"gpa,omitempty"`
}

type EmployerDetails struct {
	CompanyName    string `json:"companyName,omitempty"`
	CompanyWebsite string `json:"companyWebsite,omitempty"`
	Industry       string `json:"industry,omitempty"`
}

type Registration struct {
	Email           string           `json:"email"`
	Password        string           `json:"password"`
	UserType        Role             `json:"userType"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	StudentDetails  *StudentDetails  `json:"studentDetails,omitempty"`
	EmployerDetails *EmployerDetails `json:"employerDetails,omitempty"`
}

// AuthResult is the backend's answer to login and register.
type AuthResult struct {
	Token    string `json:"token"`
	UserType Role   `json:"userType"`
}

type AuthGateway interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	Me(ctx context.Context) (*User, error)
}

// SessionStore is the browser's durable key-value store for the credential pair.
type SessionStore interface {
	Load(ctx context.Context) Session
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context)
}

type AuthUsecase interface {
	Login(ctx context.Context, creds Credentials) (landing string, err error)
	Register(ctx context.Context, reg Registration) (landing string, err error)
	Logout(ctx context.Context)
	CurrentUser(ctx context.Context) (*User, error)
}
