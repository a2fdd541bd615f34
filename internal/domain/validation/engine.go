// Package validation turns a raw submitted value into a typed value record
// for one field definition, or into the full list of reasons it cannot be
// stored.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"customfields/internal/core/apperror"
	"customfields/internal/core/id"
	"customfields/internal/domain/field"
	"customfields/internal/domain/fieldtype"
	"customfields/internal/domain/option"
	"customfields/internal/domain/value"
)

// UniquenessChecker answers whether an equal value is stored elsewhere.
type UniquenessChecker interface {
	ExistsEqual(ctx context.Context, q value.UniqueQuery) (bool, error)
}

// Config configures the engine.
type Config struct {
	Uniqueness UniquenessChecker
	Scope      value.UniqueScope
}

// Engine validates submissions. It is stateless apart from its
// collaborators and safe for concurrent use.
type Engine struct {
	uniqueness UniquenessChecker
	scope      value.UniqueScope
	validate   *validator.Validate
}

// NewEngine creates a validation engine.
func NewEngine(cfg Config) *Engine {
	scope := cfg.Scope
	if scope == "" {
		scope = value.ScopeField
	}
	return &Engine{
		uniqueness: cfg.Uniqueness,
		scope:      scope,
		validate:   validator.New(),
	}
}

// Request is one submission.
type Request struct {
	Field *field.Definition

	// Options holds the non-deleted options of a selection field. Only the
	// active ones are valid choices.
	Options []*option.Option

	OwnerID id.ID
	Raw     any

	// Prior is the value currently stored for (Field, OwnerID), if any.
	// File fields use it to resolve bare refs of already uploaded files.
	Prior *value.Record
}

// Validate checks raw against the definition. It returns the record to
// store, (nil, nil) when an empty value clears a non-required field, a
// *Rejection for recoverable problems, or a transport error.
func (e *Engine) Validate(ctx context.Context, req Request) (*value.Record, error) {
	def := req.Field
	if def == nil {
		return nil, apperror.NewInternal(fmt.Errorf("validation request without field"))
	}
	rej := &Rejection{FieldID: def.ID, Label: def.Label}
	caps := def.Capabilities()

	c, m := coerce(def.Type, req.Raw, req.Prior)
	if m != nil {
		rej.add(KindTypeMismatch, ConstraintType, m.message, map[string]any{
			"field_type": def.Type.String(),
		})
		return nil, rej
	}

	if c.empty {
		if def.Required {
			rej.add(KindConstraint, ConstraintRequired, "value is required", nil)
			return nil, rej
		}
		return nil, nil
	}

	if caps.RequiresOptions {
		c.list = canonicalOptionIDs(c.list)
	}
	for _, kind := range caps.Constraints.Kinds() {
		e.check(kind, def, req.Options, c, rej)
	}

	key := uniqueKey(def.Type, c)
	if def.Unique && e.uniqueness != nil {
		exists, err := e.uniqueness.ExistsEqual(ctx, value.UniqueQuery{
			Scope:     e.scope,
			FieldID:   def.ID,
			EntityID:  def.EntityID,
			FieldType: def.Type,
			OwnerID:   req.OwnerID,
			Key:       key,
		})
		if err != nil {
			return nil, apperror.NewTransport(fmt.Errorf("uniqueness check: %w", err))
		}
		if exists {
			rej.add(KindUniqueness, ConstraintUnique, "an equal value is already stored", map[string]any{
				"scope": string(e.scope),
			})
		}
	}

	if len(rej.Violations) > 0 {
		return nil, rej
	}

	slot, err := toSlot(caps.Storage, def.Type, c)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("route value: %w", err))
	}
	rec, err := value.New(def.ID, req.OwnerID, def.Type, slot, key)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return rec, nil
}

// canonicalOptionIDs rewrites every parseable option id in its canonical
// lower-case form and drops the duplicates that exposes. Unparseable items
// are kept as given so the membership check reports them.
func canonicalOptionIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		if optID, err := id.Parse(raw); err == nil {
			raw = optID.String()
		}
		if _, dup := seen[raw]; dup {
			continue
		}
		seen[raw] = struct{}{}
		out = append(out, raw)
	}
	return out
}

// check evaluates one constraint family. Unset constraints pass.
func (e *Engine) check(kind fieldtype.ConstraintKind, def *field.Definition, opts []*option.Option, c coerced, rej *Rejection) {
	switch kind {
	case fieldtype.ConstraintLength:
		n := utf8.RuneCountInString(c.text)
		if def.MinLength != nil && n < *def.MinLength {
			rej.add(KindConstraint, ConstraintLength,
				fmt.Sprintf("must be at least %d characters", *def.MinLength),
				map[string]any{"min_length": *def.MinLength, "length": n})
		}
		if def.MaxLength != nil && n > *def.MaxLength {
			rej.add(KindConstraint, ConstraintLength,
				fmt.Sprintf("must be at most %d characters", *def.MaxLength),
				map[string]any{"max_length": *def.MaxLength, "length": n})
		}

	case fieldtype.ConstraintPattern:
		re, err := def.Pattern()
		if err != nil || re == nil {
			return
		}
		if !re.MatchString(c.text) {
			rej.add(KindConstraint, ConstraintPattern, "does not match the required pattern",
				map[string]any{"regex": *def.Regex})
		}

	case fieldtype.ConstraintRange:
		if def.MinValue != nil && c.number.LessThan(*def.MinValue) {
			rej.add(KindConstraint, ConstraintRange,
				fmt.Sprintf("must be at least %s", def.MinValue.String()),
				map[string]any{"min_value": def.MinValue.String(), "value": c.number.String()})
		}
		if def.MaxValue != nil && c.number.GreaterThan(*def.MaxValue) {
			rej.add(KindConstraint, ConstraintRange,
				fmt.Sprintf("must be at most %s", def.MaxValue.String()),
				map[string]any{"max_value": def.MaxValue.String(), "value": c.number.String()})
		}

	case fieldtype.ConstraintPrecision:
		if !c.number.Round(AmountScale).Equal(c.number) {
			rej.add(KindConstraint, ConstraintPrecision,
				fmt.Sprintf("must have at most %d decimal places", AmountScale),
				map[string]any{"scale": AmountScale, "value": c.number.String()})
		}

	case fieldtype.ConstraintOptions:
		active := option.ActiveIDs(opts)
		var invalid []string
		for _, raw := range c.list {
			optID, err := id.Parse(raw)
			if err != nil {
				invalid = append(invalid, raw)
				continue
			}
			if _, ok := active[optID]; !ok {
				invalid = append(invalid, raw)
			}
		}
		if len(invalid) > 0 {
			rej.add(KindConstraint, ConstraintOptions, "not an active option of this field",
				map[string]any{"invalid": invalid})
		}

	case fieldtype.ConstraintFileSize:
		if def.FileSize == nil {
			return
		}
		limit := *def.FileSize
		for _, f := range c.files {
			if f.Size > limit {
				rej.add(KindConstraint, ConstraintFileSize,
					fmt.Sprintf("%s exceeds the %s limit", f.Name, humanize.Bytes(uint64(limit))),
					map[string]any{"ref": f.Ref, "size": f.Size, "file_size": limit})
			}
		}

	case fieldtype.ConstraintFileType:
		allowed := def.AllowedExtensions()
		for _, f := range c.files {
			ext, known := fieldtype.ExtensionOf(f.Name)
			if len(allowed) == 0 {
				if !known {
					rej.add(KindConstraint, ConstraintFileType,
						fmt.Sprintf("%s has an unsupported extension", f.Name),
						map[string]any{"ref": f.Ref})
				}
				continue
			}
			if !known || !containsExt(allowed, ext) {
				rej.add(KindConstraint, ConstraintFileType,
					fmt.Sprintf("%s is not an allowed file type", f.Name),
					map[string]any{"ref": f.Ref, "file_types": allowed})
			}
		}

	case fieldtype.ConstraintFormat:
		if err := e.checkFormat(def.Type, c.text); err != nil {
			rej.add(KindConstraint, ConstraintFormat, err.Error(),
				map[string]any{"field_type": def.Type.String()})
		}
	}
}

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

func (e *Engine) checkFormat(ft fieldtype.Type, s string) error {
	switch ft {
	case fieldtype.Email:
		if e.validate.Var(s, "email") != nil {
			return fmt.Errorf("not a valid email address")
		}
	case fieldtype.Phone:
		tag := "numeric,min=4,max=15"
		if strings.HasPrefix(s, "+") {
			tag = "e164"
		}
		if e.validate.Var(s, tag) != nil {
			return fmt.Errorf("not a valid phone number")
		}
	}
	return nil
}

func containsExt(list []fieldtype.Extension, ext fieldtype.Extension) bool {
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}

// uniqueKey renders the normalized comparison form. Equal keys mean equal
// values for uniqueness purposes.
func uniqueKey(ft fieldtype.Type, c coerced) string {
	switch ft {
	case fieldtype.Number:
		return c.number.String()
	case fieldtype.Amount:
		return c.number.StringFixed(AmountScale)
	case fieldtype.Date:
		return c.date.Format(value.DateLayout)
	case fieldtype.Time:
		return c.clock.String()
	case fieldtype.SingleSelect, fieldtype.Radio, fieldtype.MultiSelect, fieldtype.Checkbox, fieldtype.Tag:
		items := append([]string(nil), c.list...)
		sort.Strings(items)
		return strings.Join(items, "\x1f")
	case fieldtype.File, fieldtype.Image, fieldtype.MultiFile, fieldtype.MultiImage:
		refs := make([]string, 0, len(c.files))
		for _, f := range c.files {
			refs = append(refs, f.Ref)
		}
		sort.Strings(refs)
		return strings.Join(refs, "\x1f")
	case fieldtype.Location:
		b, _ := json.Marshal(c.location)
		return string(b)
	}
	return c.text
}

// toSlot routes the coerced value into the slot its storage kind names.
func toSlot(kind fieldtype.StorageKind, ft fieldtype.Type, c coerced) (value.Slot, error) {
	switch kind {
	case fieldtype.StorageText:
		switch ft {
		case fieldtype.Number:
			return value.TextSlot{Text: c.number.String()}, nil
		case fieldtype.Amount:
			return value.TextSlot{Text: c.number.StringFixed(AmountScale)}, nil
		}
		return value.TextSlot{Text: c.text}, nil
	case fieldtype.StorageDate:
		return value.DateSlot{Date: c.date}, nil
	case fieldtype.StorageTime:
		return value.TimeSlot{Time: c.clock}, nil
	case fieldtype.StorageJSON:
		caps := fieldtype.CapabilitiesOf(ft)
		switch {
		case caps.Files && caps.MultiValued:
			return value.NewJSONSlot(c.files)
		case caps.Files:
			return value.NewJSONSlot(c.files[0])
		case ft == fieldtype.Location:
			return value.NewJSONSlot(c.location)
		}
		return value.NewJSONSlot(c.list)
	}
	return nil, fmt.Errorf("unknown storage kind %q", kind)
}
