// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"strings"

	"github.com/tomtom215/sommelier/internal/wine"
)

const (
	// UnknownLabel is coded for records that lack a categorical field.
	UnknownLabel = "Unknown"

	// UnseenCode is returned for labels that were not observed at fit time.
	UnseenCode = -1
)

// categoryTable maps the labels of one categorical field to dense codes.
// Labels are compared after trimming and case folding; codes follow
// first-seen catalog order.
type categoryTable struct {
	field  wine.Field
	labels []string
	codes  map[string]int
}

func newCategoryTable(field wine.Field) *categoryTable {
	return &categoryTable{
		field: field,
		codes: make(map[string]int),
	}
}

func labelKey(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// add registers a label (or UnknownLabel when absent) and returns its code.
func (t *categoryTable) add(label string, present bool) int {
	if !present {
		label = UnknownLabel
	}
	key := labelKey(label)
	if code, ok := t.codes[key]; ok {
		return code
	}
	code := len(t.labels)
	t.labels = append(t.labels, strings.TrimSpace(label))
	t.codes[key] = code
	return code
}

// code looks up a query label. Unseen labels map to UnseenCode.
func (t *categoryTable) code(label string) int {
	if code, ok := t.codes[labelKey(label)]; ok {
		return code
	}
	return UnseenCode
}

func restoreCategoryTable(field wine.Field, labels []string) *categoryTable {
	t := newCategoryTable(field)
	for _, label := range labels {
		t.add(label, true)
	}
	return t
}
