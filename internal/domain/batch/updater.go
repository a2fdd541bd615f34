// Package batch applies a set of value submissions for one owning entity.
// Items succeed or fail independently; only a store failure aborts the set.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/core/tx"
	"customfields/internal/domain/field"
	"customfields/internal/domain/option"
	"customfields/internal/domain/validation"
	"customfields/internal/domain/value"
	"customfields/pkg/logger"
)

// FieldSource resolves field definitions in any status.
type FieldSource interface {
	Get(ctx context.Context, fieldID id.ID) (*field.Definition, error)
}

// OptionSource returns the non-deleted options of a selection field.
type OptionSource interface {
	ForValidation(ctx context.Context, fieldID id.ID) ([]*option.Option, error)
}

// Validator turns a submission into a value record.
type Validator interface {
	Validate(ctx context.Context, req validation.Request) (*value.Record, error)
}

// Submission is one (field, raw value) pair.
type Submission struct {
	FieldID id.ID `json:"field_id" binding:"required"`
	Value   any   `json:"value"`
}

// Status is the outcome of one submission.
type Status string

const (
	StatusSaved     Status = "saved"
	StatusUnchanged Status = "unchanged"
	StatusCleared   Status = "cleared"
	StatusRejected  Status = "rejected"
)

// ItemResult reports one submission in submission order.
type ItemResult struct {
	FieldID   id.ID                 `json:"field_id"`
	Status    Status                `json:"status"`
	Value     any                   `json:"value,omitempty"`
	Rejection *validation.Rejection `json:"rejection,omitempty"`
}

// Result is the outcome of a batch.
type Result struct {
	OwnerID id.ID        `json:"owner_id"`
	Items   []ItemResult `json:"items"`

	// PendingFileDeletions lists file refs that no committed value
	// references any more. The caller removes them from file storage.
	PendingFileDeletions []string `json:"pending_file_deletions"`
}

// Count returns the number of items with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, item := range r.Items {
		if item.Status == s {
			n++
		}
	}
	return n
}

// Updater applies submission batches.
type Updater struct {
	fields    FieldSource
	options   OptionSource
	values    value.Repository
	engine    Validator
	txManager tx.Manager
	maxItems  int
}

// UpdaterConfig configures the updater.
type UpdaterConfig struct {
	Fields    FieldSource
	Options   OptionSource
	Values    value.Repository
	Engine    Validator
	TxManager tx.Manager
	// MaxItems bounds the batch length. Zero means unbounded.
	MaxItems int
}

// NewUpdater creates a new batch updater.
func NewUpdater(cfg UpdaterConfig) *Updater {
	return &Updater{
		fields:    cfg.Fields,
		options:   cfg.Options,
		values:    cfg.Values,
		engine:    cfg.Engine,
		txManager: cfg.TxManager,
		maxItems:  cfg.MaxItems,
	}
}

// itemOutcome is what one committed item contributes to the result.
type itemOutcome struct {
	result   ItemResult
	released []string
	current  []string
}

// Apply validates and stores every submission for ownerID in order. Each
// item runs in its own transaction so the uniqueness check and the write
// see the same state. Duplicate field ids are applied in order; the last
// one wins. A transport failure stops the batch: items already committed
// stay committed, and the partial result is returned along with the error
// so file refs those items released are still reported.
func (u *Updater) Apply(ctx context.Context, ownerID id.ID, subs []Submission, actorID string) (*Result, error) {
	if id.IsNil(ownerID) {
		return nil, apperror.NewValidation("owner id is required").WithDetail("field", "owner_id")
	}
	if u.maxItems > 0 && len(subs) > u.maxItems {
		return nil, apperror.NewValidation("too many submissions in one batch").
			WithDetail("max", u.maxItems).
			WithDetail("got", len(subs))
	}

	acc := newAccumulator(ownerID, len(subs))
	for _, sub := range subs {
		out, err := u.applyOne(ctx, ownerID, sub, actorID)
		if err != nil {
			res := acc.result()
			logger.Error(ctx, "batch aborted",
				"owner_id", ownerID,
				"field_id", sub.FieldID,
				"applied", len(res.Items),
				"pending_file_deletions", len(res.PendingFileDeletions),
				"error", err,
			)
			return res, err
		}
		acc.add(sub.FieldID, out)
	}

	res := acc.result()
	logger.Info(ctx, "batch applied",
		"owner_id", ownerID,
		"items", len(res.Items),
		"saved", res.Count(StatusSaved),
		"cleared", res.Count(StatusCleared),
		"unchanged", res.Count(StatusUnchanged),
		"rejected", res.Count(StatusRejected),
		"pending_file_deletions", len(res.PendingFileDeletions),
	)
	return res, nil
}

// accumulator folds committed item outcomes into a Result.
type accumulator struct {
	res           *Result
	released      map[string]struct{}
	releasedOrder []string
	current       map[id.ID][]string
}

func newAccumulator(ownerID id.ID, n int) *accumulator {
	return &accumulator{
		res:      &Result{OwnerID: ownerID, Items: make([]ItemResult, 0, n)},
		released: make(map[string]struct{}),
		current:  make(map[id.ID][]string),
	}
}

func (a *accumulator) add(fieldID id.ID, out itemOutcome) {
	a.res.Items = append(a.res.Items, out.result)
	if out.result.Status == StatusRejected {
		return
	}
	a.current[fieldID] = out.current
	for _, ref := range out.released {
		if _, dup := a.released[ref]; !dup {
			a.released[ref] = struct{}{}
			a.releasedOrder = append(a.releasedOrder, ref)
		}
	}
}

// result computes pending deletions: released refs no committed value of
// this batch still uses.
func (a *accumulator) result() *Result {
	inUse := make(map[string]struct{})
	for _, refs := range a.current {
		for _, ref := range refs {
			inUse[ref] = struct{}{}
		}
	}
	a.res.PendingFileDeletions = make([]string, 0, len(a.releasedOrder))
	for _, ref := range a.releasedOrder {
		if _, ok := inUse[ref]; !ok {
			a.res.PendingFileDeletions = append(a.res.PendingFileDeletions, ref)
		}
	}
	return a.res
}

func (u *Updater) applyOne(ctx context.Context, ownerID id.ID, sub Submission, actorID string) (itemOutcome, error) {
	var out itemOutcome

	err := u.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		def, err := u.fields.Get(ctx, sub.FieldID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return validation.NewReferenceRejection(sub.FieldID, "field does not exist")
			}
			return err
		}
		if def.IsDeleted() {
			return validation.NewReferenceRejection(sub.FieldID, "field is deleted")
		}

		var opts []*option.Option
		if def.Capabilities().RequiresOptions {
			if opts, err = u.options.ForValidation(ctx, def.ID); err != nil {
				return fmt.Errorf("load options: %w", err)
			}
		}

		prior, err := u.values.Get(ctx, def.ID, ownerID)
		if err != nil {
			if !apperror.IsNotFound(err) {
				return fmt.Errorf("load prior value: %w", err)
			}
			prior = nil
		}

		rec, err := u.engine.Validate(ctx, validation.Request{
			Field:   def,
			Options: opts,
			OwnerID: ownerID,
			Raw:     sub.Value,
			Prior:   prior,
		})
		if err != nil {
			return err
		}

		out.result = ItemResult{FieldID: def.ID}
		switch {
		case rec == nil && prior == nil:
			out.result.Status = StatusUnchanged
		case rec == nil:
			if err := u.values.Delete(ctx, def.ID, ownerID); err != nil {
				return fmt.Errorf("clear value: %w", err)
			}
			out.result.Status = StatusCleared
			out.released = prior.FileRefs()
		case rec.SameValue(prior):
			out.result.Status = StatusUnchanged
			out.result.Value = prior.Value()
			out.current = prior.FileRefs()
		default:
			if prior != nil {
				rec.ID = prior.ID
			}
			rec.UpdatedBy = actorID
			rec.UpdatedAt = time.Now().UTC()
			if err := u.values.Put(ctx, rec); err != nil {
				return fmt.Errorf("store value: %w", err)
			}
			out.result.Status = StatusSaved
			out.result.Value = rec.Value()
			out.current = rec.FileRefs()
			out.released = subtract(prior.FileRefs(), out.current)
		}
		return nil
	})
	if err == nil {
		return out, nil
	}

	if rej := asRejection(sub.FieldID, err); rej != nil {
		logger.Debug(ctx, "submission rejected",
			"owner_id", ownerID,
			"field_id", sub.FieldID,
			"constraints", rej.Constraints(),
		)
		return itemOutcome{result: ItemResult{
			FieldID:   sub.FieldID,
			Status:    StatusRejected,
			Rejection: rej,
		}}, nil
	}
	if apperror.HasCode(err, apperror.CodeTransport) {
		return itemOutcome{}, err
	}
	return itemOutcome{}, apperror.NewTransport(err)
}

// asRejection maps recoverable errors onto a rejection. Store-level
// uniqueness violations surface as uniqueness conflicts.
func asRejection(fieldID id.ID, err error) *validation.Rejection {
	var rej *validation.Rejection
	if errors.As(err, &rej) {
		return rej
	}
	if !apperror.IsRecoverable(err) {
		return nil
	}
	appErr, _ := apperror.AsAppError(err)
	r := &validation.Rejection{FieldID: fieldID}
	kind, constraint := validation.KindConstraint, validation.ConstraintField
	switch appErr.Code {
	case apperror.CodeTypeMismatch:
		kind, constraint = validation.KindTypeMismatch, validation.ConstraintType
	case apperror.CodeUniquenessConflict, apperror.CodeDuplicate:
		kind, constraint = validation.KindUniqueness, validation.ConstraintUnique
	case apperror.CodeReference, apperror.CodeNotFound:
		kind = validation.KindReference
	case apperror.CodeState:
		kind = validation.KindState
	}
	r.Violations = append(r.Violations, validation.Violation{
		Kind:       kind,
		Constraint: constraint,
		Message:    appErr.Message,
		Details:    appErr.Details,
	})
	return r
}

func subtract(from, remove []string) []string {
	if len(from) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(remove))
	for _, r := range remove {
		keep[r] = struct{}{}
	}
	var out []string
	for _, f := range from {
		if _, ok := keep[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

