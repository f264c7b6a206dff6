package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogModifiers() (Modifier, Modifier) {
	cheese := uuid.New()
	extra := Modifier{ID: uuid.New(), Name: "Extra Cheese", Price: decimal.NewFromInt(20), LinkedProductID: &cheese, DeductQuantity: 2, Active: true}
	noOnion := Modifier{ID: uuid.New(), Name: "No Onion", Price: decimal.Zero, Active: true}
	return extra, noOnion
}

func TestEncodeModifiers_EmptyIsArray(t *testing.T) {
	raw, err := EncodeModifiers(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	enc, err := DecodeModifiers(raw)
	require.NoError(t, err)
	assert.Equal(t, ModifiersNone, enc.Format)
}

func TestEncodeDecode_KeepsSnapshot(t *testing.T) {
	extra, noOnion := catalogModifiers()
	mods := []SelectedModifier{
		{ModifierID: &extra.ID, Name: extra.Name, Price: extra.Price, Quantity: 2,
			LinkedProductID: extra.LinkedProductID, DeductQuantity: 2, LinkKnown: true},
		{ModifierID: &noOnion.ID, Name: noOnion.Name, Price: noOnion.Price, Quantity: 1, LinkKnown: true},
	}
	raw, err := EncodeModifiers(mods)
	require.NoError(t, err)

	enc, err := DecodeModifiers(raw)
	require.NoError(t, err)
	require.Equal(t, ModifiersStructured, enc.Format)
	require.Len(t, enc.Structured, 2)

	got := enc.Structured[0]
	assert.Equal(t, extra.ID, *got.ModifierID)
	assert.Equal(t, 2, got.Quantity)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.Consumes())
	assert.True(t, got.LinkKnown)

	// a price-only entry records that it has no link
	assert.True(t, enc.Structured[1].LinkKnown)
	assert.False(t, enc.Structured[1].Consumes())
}

func TestDecodeModifiers_Legacy(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"Extra Cheese", []string{"Extra Cheese"}},
		{" Extra Cheese , No Onion,, ", []string{"Extra Cheese", "No Onion"}},
		{`["Extra Cheese","No Onion"]`, []string{"Extra Cheese", "No Onion"}},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			enc, err := DecodeModifiers([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, ModifiersLegacyFlat, enc.Format)
			assert.Equal(t, tc.want, enc.Legacy)
		})
	}
}

func TestDecodeModifiers_Blank(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", ",,"} {
		enc, err := DecodeModifiers([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, ModifiersNone, enc.Format, "raw %q", raw)
	}
}

func TestDecodeModifiers_SingleObject(t *testing.T) {
	enc, err := DecodeModifiers([]byte(`{"name":"Extra Cheese","quantity":0,"price":"20"}`))
	require.NoError(t, err)
	require.Equal(t, ModifiersStructured, enc.Format)
	assert.Equal(t, 1, enc.Structured[0].Quantity, "missing quantity means one")
	assert.False(t, enc.Structured[0].LinkKnown)
}

func TestDecodeModifiers_Malformed(t *testing.T) {
	for _, raw := range []string{`[{"name":`, `[1, 2]`, `{"name": 5}`} {
		_, err := DecodeModifiers([]byte(raw))
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestNormalize_Legacy(t *testing.T) {
	extra, noOnion := catalogModifiers()
	idx := NewModifierIndex([]Modifier{extra, noOnion})

	enc, err := DecodeModifiers([]byte("extra cheese,Mystery Sauce"))
	require.NoError(t, err)
	mods := enc.Normalize(idx)

	require.Len(t, mods, 2)
	assert.Equal(t, "Extra Cheese", mods[0].Name)
	assert.True(t, mods[0].Price.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, mods[0].Quantity)
	assert.Equal(t, extra.LinkedProductID, mods[0].LinkedProductID)
	assert.Equal(t, 2, mods[0].DeductQuantity)

	assert.Equal(t, "Mystery Sauce", mods[1].Name)
	assert.True(t, mods[1].Price.IsZero())
	assert.False(t, mods[1].Consumes())
}

func TestNormalize_StructuredWithoutLinkUsesCatalog(t *testing.T) {
	extra, _ := catalogModifiers()
	idx := NewModifierIndex([]Modifier{extra})

	enc, err := DecodeModifiers([]byte(`[{"id":"` + extra.ID.String() + `","name":"Renamed","quantity":1,"price":"18"}]`))
	require.NoError(t, err)
	mods := enc.Normalize(idx)

	require.Len(t, mods, 1)
	assert.Equal(t, "Renamed", mods[0].Name, "the stored snapshot keeps its name")
	assert.True(t, mods[0].Price.Equal(decimal.NewFromInt(18)), "and its price")
	assert.True(t, mods[0].Consumes())
}

func TestModifierIndex_Lookup(t *testing.T) {
	extra, noOnion := catalogModifiers()
	idx := NewModifierIndex([]Modifier{extra, noOnion})

	m, ok := idx.Lookup(&noOnion.ID, "whatever")
	require.True(t, ok)
	assert.Equal(t, "No Onion", m.Name)

	unknown := uuid.New()
	m, ok = idx.Lookup(&unknown, "  NO ONION ")
	require.True(t, ok)
	assert.Equal(t, noOnion.ID, m.ID)

	_, ok = idx.Lookup(nil, "Bacon")
	assert.False(t, ok)
}

func TestModifierFormat_String(t *testing.T) {
	assert.Equal(t, "none", ModifiersNone.String())
	assert.Equal(t, "structured", ModifiersStructured.String())
	assert.Equal(t, "legacy_flat", ModifiersLegacyFlat.String())
}
