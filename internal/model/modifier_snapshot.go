package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SelectedModifier is the by-value snapshot of a modifier chosen on a line.
type SelectedModifier struct {
	ModifierID      *uuid.UUID
	Name            string
	Price           decimal.Decimal
	Quantity        int
	LinkedProductID *uuid.UUID
	DeductQuantity  int
	// LinkKnown is false when the stored snapshot carried no link information
	// and the link must be resolved against the current catalog.
	LinkKnown bool
}

// Consumes reports whether the modifier draws stock from a linked product.
func (m SelectedModifier) Consumes() bool {
	return m.LinkedProductID != nil && m.DeductQuantity > 0
}

// ModifierFormat tags how a line's modifiers were persisted.
type ModifierFormat int

const (
	ModifiersNone ModifierFormat = iota
	ModifiersStructured
	ModifiersLegacyFlat
)

func (f ModifierFormat) String() string {
	switch f {
	case ModifiersStructured:
		return "structured"
	case ModifiersLegacyFlat:
		return "legacy_flat"
	default:
		return "none"
	}
}

// ModifierEncoding is the decoded form of an OrderLine.Modifiers column.
// Exactly one of Structured or Legacy is populated, according to Format.
type ModifierEncoding struct {
	Format     ModifierFormat
	Structured []SelectedModifier
	Legacy     []string
}

// wireModifier is the structured on-disk shape.
type wireModifier struct {
	ID              *uuid.UUID      `json:"id,omitempty"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
	LinkedProductID *uuid.UUID      `json:"linked_product_id,omitempty"`
	DeductQuantity  int             `json:"deduct_quantity,omitempty"`
	Linked          *bool           `json:"linked,omitempty"`
}

// EncodeModifiers renders the structured encoding. An empty selection is
// stored as "[]" so the column is never NULL.
func EncodeModifiers(mods []SelectedModifier) (datatypes.JSON, error) {
	wire := make([]wireModifier, 0, len(mods))
	for _, m := range mods {
		linked := m.LinkedProductID != nil
		wire = append(wire, wireModifier{
			ID:              m.ModifierID,
			Name:            m.Name,
			Quantity:        m.Quantity,
			Price:           m.Price,
			LinkedProductID: m.LinkedProductID,
			DeductQuantity:  m.DeductQuantity,
			Linked:          &linked,
		})
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// legacySeparator splits the flat name list written by older releases.
const legacySeparator = ","

// DecodeModifiers parses either encoding. A blank column decodes to
// ModifiersNone. Text that looks like JSON but does not parse is an error;
// anything else is treated as the legacy flat list.
func DecodeModifiers(raw []byte) (ModifierEncoding, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ModifierEncoding{Format: ModifiersNone}, nil
	}

	switch trimmed[0] {
	case '[':
		var wire []wireModifier
		if err := json.Unmarshal(trimmed, &wire); err == nil {
			return structured(wire), nil
		}
		// Some old rows stored a JSON array of bare names.
		var names []string
		if err := json.Unmarshal(trimmed, &names); err == nil {
			return legacy(names), nil
		}
		return ModifierEncoding{}, fmt.Errorf("modifier column is not a valid modifier list: %q", truncate(trimmed))
	case '{':
		var one wireModifier
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return ModifierEncoding{}, fmt.Errorf("modifier column is not a valid modifier object: %w", err)
		}
		return structured([]wireModifier{one}), nil
	}

	return legacy(strings.Split(string(trimmed), legacySeparator)), nil
}

func structured(wire []wireModifier) ModifierEncoding {
	if len(wire) == 0 {
		return ModifierEncoding{Format: ModifiersNone}
	}
	mods := make([]SelectedModifier, 0, len(wire))
	for _, w := range wire {
		qty := w.Quantity
		if qty < 1 {
			qty = 1
		}
		mods = append(mods, SelectedModifier{
			ModifierID:      w.ID,
			Name:            strings.TrimSpace(w.Name),
			Price:           w.Price,
			Quantity:        qty,
			LinkedProductID: w.LinkedProductID,
			DeductQuantity:  w.DeductQuantity,
			LinkKnown:       w.Linked != nil || w.LinkedProductID != nil,
		})
	}
	return ModifierEncoding{Format: ModifiersStructured, Structured: mods}
}

func legacy(parts []string) ModifierEncoding {
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := strings.TrimSpace(p); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return ModifierEncoding{Format: ModifiersNone}
	}
	return ModifierEncoding{Format: ModifiersLegacyFlat, Legacy: names}
}

func truncate(b []byte) string {
	const max = 64
	if len(b) > max {
		return string(b[:max]) + "…"
	}
	return string(b)
}

// ModifierIndex resolves modifiers against the current catalog, by id first
// and then by case-insensitive name.
type ModifierIndex struct {
	byID   map[uuid.UUID]*Modifier
	byName map[string]*Modifier
}

func NewModifierIndex(mods []Modifier) ModifierIndex {
	idx := ModifierIndex{
		byID:   make(map[uuid.UUID]*Modifier, len(mods)),
		byName: make(map[string]*Modifier, len(mods)),
	}
	for i := range mods {
		m := &mods[i]
		idx.byID[m.ID] = m
		idx.byName[strings.ToLower(strings.TrimSpace(m.Name))] = m
	}
	return idx
}

// Lookup finds a modifier by id or, failing that, by name.
func (idx ModifierIndex) Lookup(id *uuid.UUID, name string) (*Modifier, bool) {
	if id != nil {
		if m, ok := idx.byID[*id]; ok {
			return m, true
		}
	}
	m, ok := idx.byName[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

// Normalize resolves an encoding into a common list. Structured entries
// without link information and every legacy entry get quantity, price and
// link from idx. Legacy names absent from the catalog are kept with a zero
// price and no link, so they still count as sold but consume nothing.
func (e ModifierEncoding) Normalize(idx ModifierIndex) []SelectedModifier {
	switch e.Format {
	case ModifiersStructured:
		out := make([]SelectedModifier, 0, len(e.Structured))
		for _, m := range e.Structured {
			if !m.LinkKnown {
				if cur, ok := idx.Lookup(m.ModifierID, m.Name); ok {
					m.LinkedProductID = cur.LinkedProductID
					m.DeductQuantity = cur.DeductQuantity
				}
				m.LinkKnown = true
			}
			out = append(out, m)
		}
		return out
	case ModifiersLegacyFlat:
		out := make([]SelectedModifier, 0, len(e.Legacy))
		for _, name := range e.Legacy {
			m := SelectedModifier{Name: name, Quantity: 1, Price: decimal.Zero, LinkKnown: true}
			if cur, ok := idx.Lookup(nil, name); ok {
				id := cur.ID
				m.ModifierID = &id
				m.Name = cur.Name
				m.Price = cur.Price
				m.LinkedProductID = cur.LinkedProductID
				m.DeductQuantity = cur.DeductQuantity
			}
			out = append(out, m)
		}
		return out
	default:
		return nil
	}
}
