// Package service implements organization registration: creating an
// institution and its initial admin user, then handing off to the auth
// subsystem for everything credential-related.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	orgdomain "campus-control-plane/backend/internal/organization/domain"
	orgrepo "campus-control-plane/backend/internal/organization/repository"
	"campus-control-plane/backend/internal/security"
	userdomain "campus-control-plane/backend/internal/user/domain"
	userrepo "campus-control-plane/backend/internal/user/repository"
)

// Sentinel errors for registration; the boundary maps them to failure codes.
var (
	ErrSlugTaken     = errors.New("organization slug already registered")
	ErrUsernameTaken = errors.New("username already registered")
	ErrInvalidSlug   = errors.New("invalid organization slug")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// RegisterResult holds the created organization and admin user.
type RegisterResult struct {
	Org   *orgdomain.Org
	Admin *userdomain.User
}

// Registrar creates organizations with their initial admin user.
type Registrar struct {
	orgs   orgrepo.Repository
	users  userrepo.Repository
	hasher *security.Hasher
}

// NewRegistrar returns a Registrar with the given dependencies.
func NewRegistrar(orgs orgrepo.Repository, users userrepo.Repository, hasher *security.Hasher) *Registrar {
	return &Registrar{orgs: orgs, users: users, hasher: hasher}
}

// Register creates the organization identified by slug and its initial admin
// user. The admin authenticates through the regular login flow afterwards.
func (r *Registrar) Register(ctx context.Context, name, slug, adminUsername, adminEmail, adminPassword string) (*RegisterResult, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}

	existing, err := r.orgs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugTaken
	}

	adminUsername = strings.TrimSpace(adminUsername)
	if u, err := r.users.GetByUsername(ctx, adminUsername); err != nil {
		return nil, err
	} else if u != nil {
		return nil, ErrUsernameTaken
	}

	now := time.Now().UTC()
	org := &orgdomain.Org{
		ID:        uuid.New().String(),
		Slug:      slug,
		Name:      strings.TrimSpace(name),
		Status:    orgdomain.OrgStatusActive,
		CreatedAt: now,
	}
	if err := org.Validate(); err != nil {
		return nil, err
	}

	hash, err := r.hasher.Hash([]byte(adminPassword))
	if err != nil {
		return nil, err
	}
	admin := &userdomain.User{
		Username:     adminUsername,
		Email:        strings.TrimSpace(strings.ToLower(adminEmail)),
		PasswordHash: hash,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := admin.Validate(); err != nil {
		return nil, err
	}

	if err := r.orgs.Create(ctx, org); err != nil {
		return nil, err
	}
	if err := r.users.Create(ctx, admin); err != nil {
		return nil, err
	}
	return &RegisterResult{Org: org, Admin: admin}, nil
}
