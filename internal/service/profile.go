package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ekene/oryo/internal/database/repository"
	"github.com/ekene/oryo/internal/identity"
	"github.com/ekene/oryo/internal/tip"
)

const (
	maxNameLen = 50
	maxBioLen  = 280
)

// ErrNoAddress is returned when a profile operation has no wallet address.
var ErrNoAddress = errors.New("connect a wallet to edit your profile")

// ProfileService loads and saves the per-address profile.
type ProfileService struct {
	Profiles *repository.ProfileRepo
}

// Load returns the stored profile, or an empty one for a new address.
func (s *ProfileService) Load(ctx context.Context, address string) (repository.Profile, error) {
	if strings.TrimSpace(address) == "" {
		return repository.Profile{}, ErrNoAddress
	}
	p, err := s.Profiles.Get(ctx, address)
	if err != nil {
		return repository.Profile{}, err
	}
	if p == nil {
		return repository.Profile{Address: address}, nil
	}
	return *p, nil
}

// Save normalizes and validates p, then stores it.
func (s *ProfileService) Save(ctx context.Context, p repository.Profile) (repository.Profile, error) {
	if strings.TrimSpace(p.Address) == "" {
		return p, ErrNoAddress
	}
	p = normalizeProfile(p)
	if err := validateProfile(p); err != nil {
		return p, err
	}
	if err := s.Profiles.Save(ctx, p); err != nil {
		return p, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// ApplyIdentity fills the stored profile from an OAuth login. Fields the
// user already set are kept.
func (s *ProfileService) ApplyIdentity(ctx context.Context, address string, id identity.Profile) (repository.Profile, error) {
	p, err := s.Load(ctx, address)
	if err != nil {
		return p, err
	}
	if p.Name == "" {
		p.Name = id.Name
	}
	if p.Email == "" {
		p.Email = id.Email
	}
	if p.Avatar == "" {
		p.Avatar = id.Avatar
	}
	if p.Handle == "" {
		p.Handle = id.Handle
	}
	return s.Save(ctx, p)
}

func normalizeProfile(p repository.Profile) repository.Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Bio = strings.TrimSpace(p.Bio)
	p.Email = strings.TrimSpace(p.Email)
	p.Website = strings.TrimSpace(p.Website)
	p.Avatar = strings.TrimSpace(p.Avatar)
	p.Handle = strings.ToLower(strings.TrimSpace(p.Handle))
	if p.Handle != "" && !strings.HasPrefix(p.Handle, "@") {
		p.Handle = "@" + p.Handle
	}
	if p.Website != "" && !strings.Contains(p.Website, "://") {
		p.Website = "https://" + p.Website
	}
	return p
}

func validateProfile(p repository.Profile) error {
	if utf8.RuneCountInString(p.Name) > maxNameLen {
		return &tip.ValidationError{Field: "name", Reason: fmt.Sprintf("name is limited to %d characters", maxNameLen)}
	}
	if utf8.RuneCountInString(p.Bio) > maxBioLen {
		return &tip.ValidationError{Field: "bio", Reason: fmt.Sprintf("bio is limited to %d characters", maxBioLen)}
	}
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return &tip.ValidationError{Field: "email", Reason: "email address looks wrong"}
		}
	}
	if p.Website != "" {
		u, err := url.Parse(p.Website)
		if err != nil || u.Host == "" {
			return &tip.ValidationError{Field: "website", Reason: "website is not a valid URL"}
		}
	}
	return nil
}
