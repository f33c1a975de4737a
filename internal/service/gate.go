package service

import (
	"context"
	"errors"
	"fmt"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/repository"
)

// Authorize allows active accounts and denies everything else with
// domain.ErrSuspended. It checks no roles and has no side effects.
func Authorize(account *domain.Account) error {
	if account == nil || !account.Active {
		return domain.ErrSuspended
	}
	return nil
}

// loadActiveAccount reads the account fresh and runs it through the gate.
func loadActiveAccount(ctx context.Context, repos repository.Repositories, userID int32) (*domain.Account, error) {
	account, err := repos.Accounts().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if err := Authorize(account); err != nil {
		return nil, err
	}
	return account, nil
}
