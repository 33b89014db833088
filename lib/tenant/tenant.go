package tenant

import (
	"errors"
)

// Tenant is one customer deployment. The id is allocated by the tenant
// store and maps to exactly one storage prefix (deployments/<id>/...)
// and one database row set.
type Tenant struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Scope    string `json:"scope"`
}

// Submission is the decoded onboarding modal state. It is consumed once
// per request and never persisted outside the provisioning queue.
type Submission struct {
	Provider           string `json:"provider" validate:"required"`
	Scope              string `json:"scope" validate:"required"`
	Subdomain          string `json:"subdomain" validate:"required,hostname_rfc1123"`
	LogoURL            string `json:"logoUrl" validate:"required,url"`
	DefaultTeam        string `json:"defaultTeam"`
	DefaultCompetition string `json:"defaultCompetition"`
	DefaultSeason      string `json:"defaultSeason"`
	AdminEmail         string `json:"adminEmail" validate:"omitempty,email"`
	UserID             string `json:"userId"`
}

var (
	ErrAuthentication  = errors.New("invalid verification token")
	ErrValidation      = errors.New("invalid submission")
	ErrNotFound        = errors.New("not found")
	ErrConfiguration   = errors.New("configuration error")
	ErrExternalService = errors.New("external service error")
)
