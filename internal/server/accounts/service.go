package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/formdesk/internal/common"
	"github.com/avelichko/formdesk/internal/server/password"
)

// Service provides registration and credential verification on top of a
// Repository. Login failure is indistinguishable between an unknown email
// and a wrong password.
type Service struct {
	repo Repository
	now  func() time.Time

	// dummyHash is verified against on unknown-email logins so both failure
	// paths pay the hashing cost.
	dummyHash string
}

func NewService(repo Repository) *Service {
	dummy, err := password.Hash("decoy")
	if err != nil {
		panic(err)
	}
	return &Service{repo: repo, now: time.Now, dummyHash: dummy}
}

// Register hashes the password and creates the account. A duplicate email
// surfaces as common.ErrConflict; other storage faults as common.ErrStorage.
func (s *Service) Register(ctx context.Context, name, email, plainPassword string) (*Account, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	account := &Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}

	account, err = s.repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("%w: creating account: %v", common.ErrStorage, err)
	}
	return account, nil
}

// Login verifies the credentials and returns the account on success. Both
// unknown email and wrong password return common.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			password.Verify(plainPassword, s.dummyHash)
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: reading account: %v", common.ErrStorage, err)
	}

	if !password.Verify(plainPassword, account.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	return account, nil
}
