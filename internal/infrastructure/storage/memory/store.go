// Package memory provides an in-process implementation of the custom field
// store. It backs tests and the "memory" storage driver.
package memory

import (
	"context"
	"sync"

	"customfields/internal/core/id"
	"customfields/internal/core/tx"
	"customfields/internal/domain/field"
	"customfields/internal/domain/option"
	"customfields/internal/domain/value"
)

// Compile-time interface checks.
var (
	_ tx.ReadOnlyManager = (*Store)(nil)
	_ field.Repository   = (*FieldRepo)(nil)
	_ option.Repository  = (*OptionRepo)(nil)
	_ value.Repository   = (*ValueRepo)(nil)
)

type fieldRow struct {
	def   field.Definition
	locks field.Locks
}

type valueKey struct {
	fieldID id.ID
	ownerID id.ID
}

// state is one consistent snapshot of every table.
type state struct {
	fields  map[id.ID]fieldRow
	options map[id.ID]option.Option
	values  map[valueKey]value.Record
	seq     int64
}

func newState() *state {
	return &state{
		fields:  make(map[id.ID]fieldRow),
		options: make(map[id.ID]option.Option),
		values:  make(map[valueKey]value.Record),
	}
}

func (s *state) clone() *state {
	c := &state{
		fields:  make(map[id.ID]fieldRow, len(s.fields)),
		options: make(map[id.ID]option.Option, len(s.options)),
		values:  make(map[valueKey]value.Record, len(s.values)),
		seq:     s.seq,
	}
	for k, v := range s.fields {
		c.fields[k] = v
	}
	for k, v := range s.options {
		c.options[k] = v
	}
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

func (s *state) nextSeq() int64 {
	s.seq++
	return s.seq
}

// Store holds all tables behind one mutex. A transaction works on a private
// copy that replaces the shared state on commit, so a failed transaction
// leaves nothing behind. Transactions are serialized.
type Store struct {
	mu   sync.Mutex
	data *state
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState()}
}

// txKey is the context key for the active transaction snapshot.
type txKey struct{}

// RunInTransaction executes fn against a private snapshot and commits it
// when fn succeeds. Nested calls reuse the snapshot from context.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}
	s.data = work
	return nil
}

// ReadOnly executes fn against a snapshot that is always discarded.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, s.data.clone()))
}

// with runs fn on the transaction snapshot in ctx, or on the shared state
// under the lock when no transaction is active.
func (s *Store) with(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if st, ok := ctx.Value(txKey{}).(*state); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Fields returns the field definition repository.
func (s *Store) Fields() *FieldRepo { return &FieldRepo{store: s} }

// Options returns the option repository.
func (s *Store) Options() *OptionRepo { return &OptionRepo{store: s} }

// Values returns the value repository.
func (s *Store) Values() *ValueRepo { return &ValueRepo{store: s} }
