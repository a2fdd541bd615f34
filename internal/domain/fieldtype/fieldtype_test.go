package fieldtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilities_TotalAndStable(t *testing.T) {
	for _, ft := range All {
		first := CapabilitiesOf(ft)
		second := ft.Capabilities()

		assert.Equal(t, first, second, "type %s", ft)
		assert.NotEmpty(t, first.Storage, "type %s has no storage slot", ft)
	}
	assert.Len(t, All, 18)
}

func TestCapabilities_SelectionTypes(t *testing.T) {
	for _, ft := range []Type{SingleSelect, MultiSelect, Radio, Checkbox} {
		caps := CapabilitiesOf(ft)
		assert.True(t, caps.RequiresOptions, ft)
		assert.True(t, caps.Constraints.Has(ConstraintOptions), ft)
		assert.Equal(t, StorageJSON, caps.Storage, ft)
	}

	tag := CapabilitiesOf(Tag)
	assert.False(t, tag.RequiresOptions)
	assert.False(t, tag.Constraints.Has(ConstraintOptions))
	assert.True(t, tag.MultiValued)
}

func TestCapabilities_StorageRouting(t *testing.T) {
	cases := map[Type]StorageKind{
		Text:       StorageText,
		Number:     StorageText,
		Amount:     StorageText,
		Email:      StorageText,
		Date:       StorageDate,
		Time:       StorageTime,
		Location:   StorageJSON,
		MultiImage: StorageJSON,
	}
	for ft, want := range cases {
		assert.Equal(t, want, CapabilitiesOf(ft).Storage, ft)
	}
}

func TestCapabilities_ConstraintFamilies(t *testing.T) {
	assert.True(t, CapabilitiesOf(Text).Constraints.Has(ConstraintLength))
	assert.False(t, CapabilitiesOf(Text).Constraints.Has(ConstraintRange))
	assert.True(t, CapabilitiesOf(Number).Constraints.Has(ConstraintRange))
	assert.False(t, CapabilitiesOf(Number).Constraints.Has(ConstraintLength))
	assert.True(t, CapabilitiesOf(Image).ImagesOnly)
	assert.True(t, CapabilitiesOf(MultiFile).Files)

	assert.Equal(t,
		[]ConstraintKind{ConstraintPlaceholder, ConstraintLength, ConstraintPattern},
		CapabilitiesOf(Textarea).Constraints.Kinds())
}

func TestParse(t *testing.T) {
	ft, err := Parse("Single-Select")
	require.NoError(t, err)
	assert.Equal(t, SingleSelect, ft)

	_, err = Parse("spreadsheet")
	assert.Error(t, err)

	var decoded Type
	assert.Error(t, decoded.UnmarshalText([]byte("nope")))
	require.NoError(t, decoded.UnmarshalText([]byte("multi_image")))
	assert.Equal(t, MultiImage, decoded)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusActive, StatusInactive))
	assert.True(t, CanTransition(StatusInactive, StatusActive))
	assert.True(t, CanTransition(StatusActive, StatusDeleted))
	assert.True(t, CanTransition(StatusInactive, StatusDeleted))

	assert.False(t, CanTransition(StatusDeleted, StatusActive))
	assert.False(t, CanTransition(StatusDeleted, StatusInactive))
	assert.False(t, CanTransition(StatusActive, StatusActive))
}

func TestExtensions(t *testing.T) {
	e, err := ParseExtension(".PDF")
	require.NoError(t, err)
	assert.Equal(t, ExtPDF, e)
	assert.False(t, e.IsImage())

	_, err = ParseExtension("exe")
	assert.Error(t, err)

	list, err := ParseExtensions([]string{"png", "PNG", "jpg"})
	require.NoError(t, err)
	assert.Equal(t, []Extension{ExtPNG, ExtJPG}, list)

	ext, ok := ExtensionOf("scans/Invoice.JPEG")
	assert.True(t, ok)
	assert.Equal(t, ExtJPEG, ext)

	_, ok = ExtensionOf("README")
	assert.False(t, ok)

	ext, ok = ExtensionOf("payload.exe")
	assert.False(t, ok)
	assert.Equal(t, Extension("exe"), ext)
}
