package field

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/core/tx"
	"customfields/internal/domain/fieldtype"
	"customfields/pkg/logger"
)

// Service provides the field definition lifecycle.
type Service struct {
	repo      Repository
	txManager tx.Manager
	options   OptionSeeder
}

// ServiceConfig configures the field service.
type ServiceConfig struct {
	Repo      Repository
	TxManager tx.Manager
	// Options seeds initial options of selection fields. May be nil when
	// the caller never creates selection fields with options.
	Options OptionSeeder
}

// NewService creates a new field service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		txManager: cfg.TxManager,
		options:   cfg.Options,
	}
}

// Create stores a new active definition for an owning entity together with
// its initial options, atomically.
func (s *Service) Create(ctx context.Context, entityID id.ID, view WriteView) (*Definition, error) {
	def, locks := FromWriteView(view)
	def.ID = id.New()
	def.EntityID = entityID
	def.Status = fieldtype.StatusActive
	def.Label = strings.TrimSpace(def.Label)

	if err := def.Validate(ctx); err != nil {
		return nil, err
	}

	texts := trimOptionTexts(view.Options)
	caps := def.Capabilities()
	if caps.RequiresOptions && len(texts) == 0 {
		return nil, apperror.NewValidation("selection fields require at least one option").
			WithDetail("field", "options").
			WithDetail("field_type", def.Type.String())
	}
	if !caps.RequiresOptions && len(texts) > 0 {
		return nil, apperror.NewValidation("options are only allowed for selection fields").
			WithDetail("field", "options").
			WithDetail("field_type", def.Type.String())
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, &def, locks); err != nil {
			return fmt.Errorf("create field: %w", err)
		}
		if len(texts) > 0 {
			if s.options == nil {
				return apperror.NewInternal(fmt.Errorf("option seeder not configured"))
			}
			if err := s.options.Seed(ctx, def.ID, texts); err != nil {
				return fmt.Errorf("seed options: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "field created",
		"field_id", def.ID,
		"entity_id", entityID,
		"field_type", def.Type,
		"options", len(texts),
	)
	return &def, nil
}

// Get returns an active or inactive definition. Deleted definitions are
// reported as not found.
func (s *Service) Get(ctx context.Context, fieldID id.ID) (*Definition, error) {
	def, err := s.repo.GetByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if def.IsDeleted() {
		return nil, apperror.NewNotFound("field", fieldID.String())
	}
	return def, nil
}

// GetForEdit returns the definition projected onto the create/update shape.
func (s *Service) GetForEdit(ctx context.Context, fieldID id.ID) (WriteView, error) {
	def, err := s.Get(ctx, fieldID)
	if err != nil {
		return WriteView{}, err
	}
	locks, err := s.repo.GetLocks(ctx, fieldID)
	if err != nil {
		return WriteView{}, err
	}
	return ToWriteView(def, locks), nil
}

// List returns the definitions of an owning entity in display order.
// Deleted definitions are never listed; inactive ones only on request.
func (s *Service) List(ctx context.Context, entityID id.ID, includeInactive bool) ([]*Definition, error) {
	return s.repo.ListByEntity(ctx, entityID, includeInactive)
}

// Update applies a create/update payload to an existing definition.
// Locked booleans and their lock flags cannot change, the field type is
// immutable, and deleted definitions reject every mutation.
func (s *Service) Update(ctx context.Context, fieldID id.ID, view WriteView) (*Definition, error) {
	var updated *Definition

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, fieldID)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return apperror.NewState("deleted field cannot be modified").
				WithDetail("field_id", fieldID.String())
		}
		currentLocks, err := s.repo.GetLocks(ctx, fieldID)
		if err != nil {
			return err
		}

		next, nextLocks := FromWriteView(view)
		next.Label = strings.TrimSpace(next.Label)
		if next.Type != current.Type {
			return apperror.NewValidation("field type cannot be changed").
				WithDetail("field", "field_type").
				WithDetail("current", current.Type.String()).
				WithDetail("requested", next.Type.String())
		}
		if err := checkLocks(current, currentLocks, &next, nextLocks); err != nil {
			return err
		}

		next.ID = current.ID
		next.EntityID = current.EntityID
		next.Seq = current.Seq
		next.Status = current.Status
		if err := next.Validate(ctx); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, &next, nextLocks); err != nil {
			return fmt.Errorf("update field: %w", err)
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func checkLocks(current *Definition, locks Locks, next *Definition, nextLocks Locks) error {
	type attr struct {
		name      string
		locked    bool
		keepsLock bool
		before    bool
		after     bool
	}
	attrs := []attr{
		{"required", locks.Required, nextLocks.Required, current.Required, next.Required},
		{"unique", locks.Unique, nextLocks.Unique, current.Unique, next.Unique},
		{"visible", locks.Visible, nextLocks.Visible, current.Visible, next.Visible},
	}
	for _, a := range attrs {
		if !a.locked {
			continue
		}
		if a.before != a.after || !a.keepsLock {
			return apperror.NewAttributeLocked(a.name).
				WithDetail("field_id", current.ID.String())
		}
	}
	return nil
}

// Activate moves an inactive definition back to active.
func (s *Service) Activate(ctx context.Context, fieldID id.ID) error {
	return s.transition(ctx, fieldID, fieldtype.StatusActive)
}

// Deactivate suspends an active definition.
func (s *Service) Deactivate(ctx context.Context, fieldID id.ID) error {
	return s.transition(ctx, fieldID, fieldtype.StatusInactive)
}

// Delete soft-deletes a definition. Its options and values are kept.
func (s *Service) Delete(ctx context.Context, fieldID id.ID) error {
	return s.transition(ctx, fieldID, fieldtype.StatusDeleted)
}

func (s *Service) transition(ctx context.Context, fieldID id.ID, to fieldtype.Status) error {
	var from fieldtype.Status

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, fieldID)
		if err != nil {
			return err
		}
		from = current.Status
		if from == to && from != fieldtype.StatusDeleted {
			return nil
		}
		if !fieldtype.CanTransition(from, to) {
			return apperror.NewState(fmt.Sprintf("field cannot move from %s to %s", from, to)).
				WithDetail("field_id", fieldID.String()).
				WithDetail("from", string(from)).
				WithDetail("to", string(to))
		}
		return s.repo.SetStatus(ctx, fieldID, to)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "field status changed", "field_id", fieldID, "from", from, "to", to)
	return nil
}

// Reorder assigns new display orders to definitions of one owning entity.
// Either every requested order commits or none does. Orders need not be
// contiguous or unique; ties keep insertion order.
func (s *Service) Reorder(ctx context.Context, entityID id.ID, orders map[id.ID]int) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]id.ID, 0, len(orders))
	for fieldID := range orders {
		ids = append(ids, fieldID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, fieldID := range ids {
			def, err := s.repo.GetByID(ctx, fieldID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewReference("field", fieldID.String())
				}
				return err
			}
			if def.EntityID != entityID {
				return apperror.NewReference("field", fieldID.String()).
					WithDetail("entity_id", entityID.String())
			}
			if def.IsDeleted() {
				return apperror.NewState("deleted field cannot be reordered").
					WithDetail("field_id", fieldID.String())
			}
			if err := s.repo.SetOrder(ctx, fieldID, orders[fieldID]); err != nil {
				return fmt.Errorf("set order: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "fields reordered", "entity_id", entityID, "count", len(orders))
	return nil
}

func trimOptionTexts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
