package memory

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"clubhub-backend/internal/domain"
)

// Seed is the YAML layout accepted by LoadSeed.
type Seed struct {
	Accounts []struct {
		ID     int32  `yaml:"id"`
		Email  string `yaml:"email"`
		Name   string `yaml:"name"`
		Role   string `yaml:"role"`
		Active *bool  `yaml:"active"`
	} `yaml:"accounts"`
	Clubs []struct {
		ID           int32  `yaml:"id"`
		Name         string `yaml:"name"`
		DepartmentID int32  `yaml:"department_id"`
		Closed       bool   `yaml:"closed"`
	} `yaml:"clubs"`
	Events []struct {
		ID       int32     `yaml:"id"`
		ClubID   int32     `yaml:"club_id"`
		Name     string    `yaml:"name"`
		Capacity int32     `yaml:"capacity"`
		StartsAt time.Time `yaml:"starts_at"`
		EndsAt   time.Time `yaml:"ends_at"`
	} `yaml:"events"`
}

// LoadSeed reads accounts, clubs and events from a YAML file into the store.
func (s *Store) LoadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	for _, a := range seed.Accounts {
		role, ok := domain.ParseRole(a.Role)
		if !ok {
			return fmt.Errorf("account %d: unknown role %q", a.ID, a.Role)
		}
		active := a.Active == nil || *a.Active
		s.PutAccount(domain.Account{ID: a.ID, Email: a.Email, Name: a.Name, Role: role, Active: active})
	}
	for _, c := range seed.Clubs {
		club := domain.Club{ID: c.ID, Name: c.Name, DepartmentID: c.DepartmentID, Active: !c.Closed}
		if c.Closed {
			now := time.Now().UTC()
			club.ClosedAt = &now
		}
		s.PutClub(club)
	}
	for _, e := range seed.Events {
		if e.Capacity <= 0 {
			return fmt.Errorf("event %d: capacity must be positive", e.ID)
		}
		s.PutEvent(domain.Event{
			ID: e.ID, ClubID: e.ClubID, Name: e.Name, Capacity: e.Capacity,
			StartsAt: e.StartsAt, EndsAt: e.EndsAt,
		})
	}
	return nil
}
