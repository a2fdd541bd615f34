package value

import (
	"context"

	"customfields/internal/core/id"
	"customfields/internal/core/tx"
)

// Service exposes stored values for reading. Writes go through the batch
// updater only.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a value read service.
func NewService(repo Repository, txm tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txManager: txm}
}

// Get returns the value one owner holds for one field, NOT_FOUND if unset.
func (s *Service) Get(ctx context.Context, fieldID, ownerID id.ID) (*Record, error) {
	var rec *Record
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.repo.Get(ctx, fieldID, ownerID)
		return err
	})
	return rec, err
}

// ListByOwner returns every stored value of an owner, including values of
// inactive and deleted fields.
func (s *Service) ListByOwner(ctx context.Context, ownerID id.ID) ([]*Record, error) {
	var out []*Record
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.repo.ListByOwner(ctx, ownerID)
		return err
	})
	return out, err
}
