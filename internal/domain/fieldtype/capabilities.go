package fieldtype

// StorageKind names the typed slot a value of a field type occupies.
type StorageKind string

const (
	StorageText StorageKind = "text"
	StorageJSON StorageKind = "json"
	StorageDate StorageKind = "date"
	StorageTime StorageKind = "time"
)

// ConstraintKind identifies one constraint family a field type honours.
type ConstraintKind uint16

const (
	ConstraintPlaceholder ConstraintKind = 1 << iota
	ConstraintLength
	ConstraintPattern
	ConstraintRange
	ConstraintPrecision
	ConstraintOptions
	ConstraintFileSize
	ConstraintFileType
	ConstraintFormat
)

var constraintNames = map[ConstraintKind]string{
	ConstraintPlaceholder: "placeholder",
	ConstraintLength:      "length",
	ConstraintPattern:     "pattern",
	ConstraintRange:       "range",
	ConstraintPrecision:   "precision",
	ConstraintOptions:     "option_membership",
	ConstraintFileSize:    "file_size",
	ConstraintFileType:    "file_type",
	ConstraintFormat:      "format",
}

// String returns the constraint identifier reported in violations.
func (k ConstraintKind) String() string {
	if n, ok := constraintNames[k]; ok {
		return n
	}
	return "unknown"
}

// ConstraintSet is a bit set of ConstraintKind.
type ConstraintSet uint16

// Has reports whether k is in the set.
func (s ConstraintSet) Has(k ConstraintKind) bool {
	return s&ConstraintSet(k) != 0
}

// Kinds lists the members in ascending bit order.
func (s ConstraintSet) Kinds() []ConstraintKind {
	var out []ConstraintKind
	for k := ConstraintPlaceholder; k <= ConstraintFormat; k <<= 1 {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func set(kinds ...ConstraintKind) ConstraintSet {
	var s ConstraintSet
	for _, k := range kinds {
		s |= ConstraintSet(k)
	}
	return s
}

// Capabilities is what a field type statically determines.
type Capabilities struct {
	// Storage is the slot a coerced value is routed into.
	Storage StorageKind

	// Constraints are the constraint families the engine evaluates.
	// Constraint fields outside this set are ignored even when populated.
	Constraints ConstraintSet

	// RequiresOptions is true for selection types backed by an option set.
	RequiresOptions bool

	// MultiValued is true when the value is a list of discrete items.
	MultiValued bool

	// Files is true when the value references uploaded files.
	Files bool

	// ImagesOnly restricts file references to image extensions.
	ImagesOnly bool
}

var (
	textLike  = set(ConstraintPlaceholder, ConstraintLength, ConstraintPattern)
	formatted = set(ConstraintPlaceholder, ConstraintLength, ConstraintPattern, ConstraintFormat)
	fileLike  = set(ConstraintFileSize, ConstraintFileType)
)

var table = map[Type]Capabilities{
	Text:     {Storage: StorageText, Constraints: textLike},
	Textarea: {Storage: StorageText, Constraints: textLike},
	Email:    {Storage: StorageText, Constraints: formatted},
	Phone:    {Storage: StorageText, Constraints: formatted},
	Number:   {Storage: StorageText, Constraints: set(ConstraintPlaceholder, ConstraintRange)},
	Amount:   {Storage: StorageText, Constraints: set(ConstraintPlaceholder, ConstraintRange, ConstraintPrecision)},

	SingleSelect: {Storage: StorageJSON, Constraints: set(ConstraintOptions), RequiresOptions: true},
	Radio:        {Storage: StorageJSON, Constraints: set(ConstraintOptions), RequiresOptions: true},
	MultiSelect:  {Storage: StorageJSON, Constraints: set(ConstraintOptions), RequiresOptions: true, MultiValued: true},
	Checkbox:     {Storage: StorageJSON, Constraints: set(ConstraintOptions), RequiresOptions: true, MultiValued: true},
	Tag:          {Storage: StorageJSON, Constraints: set(ConstraintPlaceholder), MultiValued: true},

	Date: {Storage: StorageDate, Constraints: set(ConstraintPlaceholder)},
	Time: {Storage: StorageTime, Constraints: set(ConstraintPlaceholder)},

	File:       {Storage: StorageJSON, Constraints: fileLike, Files: true},
	Image:      {Storage: StorageJSON, Constraints: fileLike, Files: true, ImagesOnly: true},
	MultiFile:  {Storage: StorageJSON, Constraints: fileLike, Files: true, MultiValued: true},
	MultiImage: {Storage: StorageJSON, Constraints: fileLike, Files: true, MultiValued: true, ImagesOnly: true},

	Location: {Storage: StorageJSON, Constraints: set(ConstraintPlaceholder)},
}

// CapabilitiesOf returns the capability set of t. It never fails: every Type
// obtained through Parse is in the table, and the zero Capabilities is
// returned for a value that bypassed Parse.
func CapabilitiesOf(t Type) Capabilities {
	return table[t]
}

// Capabilities is a method form of CapabilitiesOf.
func (t Type) Capabilities() Capabilities {
	return table[t]
}

// IsSelection reports whether t is backed by an option set.
func (t Type) IsSelection() bool {
	return table[t].RequiresOptions
}
