package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

type membershipLedger struct {
	now func() time.Time
}

// NewMembershipLedger returns the club membership rules. now defaults to
// time.Now.
func NewMembershipLedger(now func() time.Time) MembershipLedger {
	if now == nil {
		now = time.Now
	}
	return &membershipLedger{now: now}
}

func (l *membershipLedger) Join(ctx context.Context, tx repository.Tx, userID, clubID int32) (*domain.MembershipChanged, error) {
	club, err := tx.Clubs().GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrClubClosed
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	if !club.IsOpen() {
		return nil, domain.ErrClubClosed
	}

	// The unique (user_id, club_id) key turns the existence check and insert
	// into one atomic step.
	m := &domain.Membership{UserID: userID, ClubID: clubID, JoinedAt: l.now().UTC()}
	if err := tx.Memberships().Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	return &domain.MembershipChanged{UserID: userID, ClubID: clubID, Kind: domain.ChangeJoined}, nil
}

func (l *membershipLedger) Leave(ctx context.Context, tx repository.Tx, userID, clubID int32) (*domain.MembershipChanged, error) {
	if err := tx.Memberships().Delete(ctx, userID, clubID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotMember
		}
		return nil, fmt.Errorf("failed to delete membership: %w", err)
	}
	return &domain.MembershipChanged{UserID: userID, ClubID: clubID, Kind: domain.ChangeLeft}, nil
}
