package option

import (
	"context"
	"fmt"
	"strings"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/core/tx"
	"customfields/internal/domain/fieldtype"
	"customfields/pkg/logger"
)

// Service manages option sets independently of their field's lifecycle.
type Service struct {
	repo      Repository
	fields    FieldLookup
	txManager tx.Manager
}

// ServiceConfig configures the option service.
type ServiceConfig struct {
	Repo      Repository
	Fields    FieldLookup
	TxManager tx.Manager
}

// NewService creates a new option service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		fields:    cfg.Fields,
		txManager: cfg.TxManager,
	}
}

// Create appends an option to a selection field that is not deleted.
func (s *Service) Create(ctx context.Context, fieldID id.ID, text string) (*Option, error) {
	var created *Option
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkField(ctx, fieldID); err != nil {
			return err
		}
		existing, err := s.repo.ListByField(ctx, fieldID, true)
		if err != nil {
			return err
		}
		o, err := s.insert(ctx, fieldID, text, nextPosition(existing))
		if err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "option created", "option_id", created.ID, "field_id", fieldID)
	return created, nil
}

// Seed creates the initial options of a freshly created field in the
// caller's transaction. The field row is expected to exist already.
func (s *Service) Seed(ctx context.Context, fieldID id.ID, texts []string) error {
	for i, text := range texts {
		if _, err := s.insert(ctx, fieldID, text, i); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) insert(ctx context.Context, fieldID id.ID, text string, position int) (*Option, error) {
	o := &Option{
		ID:       id.New(),
		FieldID:  fieldID,
		Text:     strings.TrimSpace(text),
		Position: position,
		Status:   fieldtype.StatusActive,
	}
	if err := o.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create option: %w", err)
	}
	return o, nil
}

// UpdateText edits the display text of a non-deleted option.
func (s *Service) UpdateText(ctx context.Context, optionID id.ID, text string) (*Option, error) {
	var updated *Option
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, optionID)
		if err != nil {
			return err
		}
		if o.Status == fieldtype.StatusDeleted {
			return apperror.NewState("deleted option cannot be modified").
				WithDetail("option_id", optionID.String())
		}
		o.Text = strings.TrimSpace(text)
		if err := o.Validate(ctx); err != nil {
			return err
		}
		if err := s.repo.UpdateText(ctx, optionID, o.Text); err != nil {
			return fmt.Errorf("update option: %w", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Activate makes an inactive option selectable again.
func (s *Service) Activate(ctx context.Context, optionID id.ID) error {
	return s.transition(ctx, optionID, fieldtype.StatusActive)
}

// Deactivate hides an option from new submissions.
func (s *Service) Deactivate(ctx context.Context, optionID id.ID) error {
	return s.transition(ctx, optionID, fieldtype.StatusInactive)
}

// Delete soft-deletes an option. Stored values that reference it are not
// touched; only future submissions stop accepting it.
func (s *Service) Delete(ctx context.Context, optionID id.ID) error {
	return s.transition(ctx, optionID, fieldtype.StatusDeleted)
}

func (s *Service) transition(ctx context.Context, optionID id.ID, to fieldtype.Status) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetByID(ctx, optionID)
		if err != nil {
			return err
		}
		if o.Status == to && to != fieldtype.StatusDeleted {
			return nil
		}
		if !fieldtype.CanTransition(o.Status, to) {
			return apperror.NewState(fmt.Sprintf("option cannot move from %s to %s", o.Status, to)).
				WithDetail("option_id", optionID.String())
		}
		return s.repo.SetStatus(ctx, optionID, to)
	})
}

// ListByField returns the selectable options of one field in order.
func (s *Service) ListByField(ctx context.Context, fieldID id.ID) ([]*Option, error) {
	all, err := s.repo.ListByField(ctx, fieldID, false)
	if err != nil {
		return nil, err
	}
	out := make([]*Option, 0, len(all))
	for _, o := range all {
		if o.IsActive() {
			out = append(out, o)
		}
	}
	return out, nil
}

// ListByEntity returns the selectable options of every field of an owning
// entity in one lookup, keyed by field id.
func (s *Service) ListByEntity(ctx context.Context, entityID id.ID) (map[id.ID][]*Option, error) {
	return s.repo.ListByEntity(ctx, entityID)
}

// ForValidation returns every non-deleted option of a field, active or not,
// so the engine can tell an inactive choice from an unknown one.
func (s *Service) ForValidation(ctx context.Context, fieldID id.ID) ([]*Option, error) {
	return s.repo.ListByField(ctx, fieldID, false)
}

func (s *Service) checkField(ctx context.Context, fieldID id.ID) error {
	ft, status, err := s.fields.FieldTypeAndStatus(ctx, fieldID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewReference("field", fieldID.String())
		}
		return err
	}
	if status == fieldtype.StatusDeleted {
		return apperror.NewReference("field", fieldID.String()).
			WithDetail("status", string(status))
	}
	if !ft.IsSelection() {
		return apperror.NewValidation("options are only allowed for selection fields").
			WithDetail("field_id", fieldID.String()).
			WithDetail("field_type", ft.String())
	}
	return nil
}

func nextPosition(existing []*Option) int {
	next := 0
	for _, o := range existing {
		if o.Position >= next {
			next = o.Position + 1
		}
	}
	return next
}
