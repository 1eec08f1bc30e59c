// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"slices"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort orders.
const (
	SortNewest   = ""
	SortName     = "name"
	SortCalories = "calories"
)

// Query narrows and orders a catalog listing.
type Query struct {
	Term        string
	Category    string // fruit, vegetable, or empty/"all"
	OrganicOnly bool
	Sort        string
}

// IsZero reports whether q leaves the listing untouched.
func (q Query) IsZero() bool {
	return strings.TrimSpace(q.Term) == "" && !q.OrganicOnly && q.Sort == "" &&
		(q.Category == "" || q.Category == "all")
}

// Filter returns the items matching q. The term matches name, description,
// health benefits and vitamins, case-insensitively.
func Filter(items []models.Produce, q Query) []models.Produce {
	term := strings.ToLower(strings.TrimSpace(q.Term))
	category := strings.ToLower(q.Category)

	out := make([]models.Produce, 0, len(items))
	for _, item := range items {
		if category != "" && category != "all" && item.Category != category {
			continue
		}
		if term != "" && !matches(item, term) {
			continue
		}
		if q.OrganicOnly && !item.IsOrganic {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matches(item models.Produce, term string) bool {
	if strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(item.Description), term) {
		return true
	}
	for _, list := range [][]string{item.HealthBenefits, item.Vitamins} {
		for _, s := range list {
			if strings.Contains(strings.ToLower(s), term) {
				return true
			}
		}
	}
	return false
}

// Sort orders items in place and returns them. Unknown orders keep the
// input order. Missing calories sort as zero.
func Sort(items []models.Produce, by string) []models.Produce {
	switch by {
	case SortName:
		c := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(items, func(a, b models.Produce) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortCalories:
		slices.SortStableFunc(items, func(a, b models.Produce) int {
			ca, cb := calories(a), calories(b)
			switch {
			case ca < cb:
				return -1
			case ca > cb:
				return 1
			}
			return 0
		})
	}
	return items
}

func calories(p models.Produce) float64 {
	if p.Calories == nil {
		return 0
	}
	return *p.Calories
}
