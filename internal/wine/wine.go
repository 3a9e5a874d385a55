// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package wine defines the typed wine record shared by the catalog, the
// recommendation engine and the evaluator.
//
// Every attribute is an Optional so that presence is explicit: a record (or a
// query) either carries a field or it does not, and the encoder decides how an
// absent field is imputed.
package wine

import (
	"fmt"
	"strings"
)

// Field names one attribute of a wine record. The string value is the
// catalog wire name.
type Field string

// Field vocabulary.
const (
	FieldName             Field = "product_name"
	FieldColorDescription Field = "color_description"
	FieldScentDescription Field = "scent_description"
	FieldTasteDescription Field = "taste_description"
	FieldHarmonizesWith   Field = "harmonizes_with"
	FieldWineType         Field = "technical_sheet_wine_type"
	FieldGrapes           Field = "technical_sheet_grapes"
	FieldRegion           Field = "technical_sheet_region"
	FieldCountry          Field = "technical_sheet_country"
	FieldFruit            Field = "fruit_tasting"
	FieldSugar            Field = "sugar_tasting"
	FieldAcidity          Field = "acidity_tasting"
	FieldTannin           Field = "tannin_tasting"
	FieldAlcoholContent   Field = "technical_sheet_alcohol_content"
)

// TextFields are the free-form fields concatenated into the text document.
var TextFields = []Field{
	FieldName,
	FieldColorDescription,
	FieldScentDescription,
	FieldTasteDescription,
	FieldHarmonizesWith,
	FieldWineType,
	FieldGrapes,
	FieldRegion,
	FieldCountry,
}

// CategoricalFields are the nominal label fields.
var CategoricalFields = []Field{
	FieldWineType,
	FieldCountry,
}

// OrdinalFields are the intensity scales (nominally 1-5).
var OrdinalFields = []Field{
	FieldFruit,
	FieldSugar,
	FieldAcidity,
	FieldTannin,
}

// AllFields lists every known field in wire order.
var AllFields = []Field{
	FieldName,
	FieldColorDescription,
	FieldScentDescription,
	FieldTasteDescription,
	FieldHarmonizesWith,
	FieldWineType,
	FieldGrapes,
	FieldRegion,
	FieldCountry,
	FieldFruit,
	FieldSugar,
	FieldAcidity,
	FieldTannin,
	FieldAlcoholContent,
}

// IsNumeric reports whether the field holds a number.
func (f Field) IsNumeric() bool {
	switch f {
	case FieldFruit, FieldSugar, FieldAcidity, FieldTannin, FieldAlcoholContent:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (f Field) String() string {
	return string(f)
}

// ParseField resolves a wire name to a Field.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range AllFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown wine field %q", name)
}

// Features holds the descriptive attributes of a wine. It is used both for
// catalog records and for queries.
type Features struct {
	Name             Optional[string] `json:"product_name"`
	ColorDescription Optional[string] `json:"color_description"`
	ScentDescription Optional[string] `json:"scent_description"`
	TasteDescription Optional[string] `json:"taste_description"`
	HarmonizesWith   Optional[string] `json:"harmonizes_with"`
	WineType         Optional[string] `json:"technical_sheet_wine_type"`
	Grapes           Optional[string] `json:"technical_sheet_grapes"`
	Region           Optional[string] `json:"technical_sheet_region"`
	Country          Optional[string] `json:"technical_sheet_country"`

	Fruit          Optional[float64] `json:"fruit_tasting"`
	Sugar          Optional[float64] `json:"sugar_tasting"`
	Acidity        Optional[float64] `json:"acidity_tasting"`
	Tannin         Optional[float64] `json:"tannin_tasting"`
	AlcoholContent Optional[float64] `json:"technical_sheet_alcohol_content"`
}

// Wine is one catalog record.
type Wine struct {
	ID string `json:"id"`
	Features
}

// Query is a partial feature set used to ask for recommendations.
type Query struct {
	Features
}

// QueryFrom builds a query carrying every present field of f.
//
//nolint:gocritic // hugeParam: Features is copied on purpose
func QueryFrom(f Features) Query {
	return Query{Features: f}
}

func (f *Features) text(field Field) *Optional[string] {
	switch field {
	case FieldName:
		return &f.Name
	case FieldColorDescription:
		return &f.ColorDescription
	case FieldScentDescription:
		return &f.ScentDescription
	case FieldTasteDescription:
		return &f.TasteDescription
	case FieldHarmonizesWith:
		return &f.HarmonizesWith
	case FieldWineType:
		return &f.WineType
	case FieldGrapes:
		return &f.Grapes
	case FieldRegion:
		return &f.Region
	case FieldCountry:
		return &f.Country
	}
	return nil
}

func (f *Features) number(field Field) *Optional[float64] {
	switch field {
	case FieldFruit:
		return &f.Fruit
	case FieldSugar:
		return &f.Sugar
	case FieldAcidity:
		return &f.Acidity
	case FieldTannin:
		return &f.Tannin
	case FieldAlcoholContent:
		return &f.AlcoholContent
	}
	return nil
}

// Text returns a text field value. Numeric fields are never reported.
//
//nolint:gocritic // hugeParam: value receiver keeps Features immutable
func (f Features) Text(field Field) (string, bool) {
	if p := f.text(field); p != nil {
		return p.Get()
	}
	return "", false
}

// Number returns a numeric field value.
//
//nolint:gocritic // hugeParam: value receiver keeps Features immutable
func (f Features) Number(field Field) (float64, bool) {
	if p := f.number(field); p != nil {
		return p.Get()
	}
	return 0, false
}

// Has reports whether the field is present.
//
//nolint:gocritic // hugeParam: value receiver keeps Features immutable
func (f Features) Has(field Field) bool {
	if field.IsNumeric() {
		_, ok := f.Number(field)
		return ok
	}
	_, ok := f.Text(field)
	return ok
}

// IsEmpty reports whether no field is present.
//
//nolint:gocritic // hugeParam: value receiver keeps Features immutable
func (f Features) IsEmpty() bool {
	for _, field := range AllFields {
		if f.Has(field) {
			return false
		}
	}
	return true
}

// Set assigns a field from its raw string form. Numeric fields are coerced;
// a value that does not parse leaves the field absent.
func (f *Features) Set(field Field, raw string) error {
	if p := f.number(field); p != nil {
		if v, ok := ParseNumber(raw); ok {
			*p = Some(v)
		} else {
			*p = None[float64]()
		}
		return nil
	}
	if p := f.text(field); p != nil {
		raw = strings.TrimSpace(raw)
		if raw == "" || isNoneLiteral(raw) {
			*p = None[string]()
		} else {
			*p = Some(raw)
		}
		return nil
	}
	return fmt.Errorf("unknown wine field %q", field)
}

// Clear removes a field.
func (f *Features) Clear(field Field) {
	if p := f.number(field); p != nil {
		*p = None[float64]()
		return
	}
	if p := f.text(field); p != nil {
		*p = None[string]()
	}
}
