// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Catalog categories.
const (
	CategoryFruit     = "fruit"
	CategoryVegetable = "vegetable"
)

// Produce is a catalog entry for a fruit or vegetable.
type Produce struct { //nolint:govet // fieldalignment: readability over optimization
	ID                   string     `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	Category             string     `db:"category" json:"category"`
	Description          string     `db:"description" json:"description,omitempty"`
	Calories             *float64   `db:"calories" json:"calories,omitempty"`
	Vitamins             StringList `db:"vitamins" json:"vitamins"`
	Minerals             MineralMap `db:"minerals" json:"minerals"`
	HealthBenefits       StringList `db:"health_benefits" json:"healthBenefits"`
	SeasonalAvailability string     `db:"seasonal_availability" json:"seasonalAvailability,omitempty"`
	IsOrganic            bool       `db:"is_organic" json:"isOrganic"`
	OriginStory          string     `db:"origin_story" json:"originStory,omitempty"`
	ImageURL             string     `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

// StringList is an ordered list of strings stored as a JSON array.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}
	out := []string{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return fmt.Errorf("decoding string list: %w", err)
		}
	}
	*l = out
	return nil
}

// MineralMap maps a mineral name to its amount, stored as a JSON object.
type MineralMap map[string]float64

// Value implements driver.Valuer.
func (m MineralMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]float64(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *MineralMap) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return err
	}
	out := map[string]float64{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &out); err != nil {
			return fmt.Errorf("decoding minerals: %w", err)
		}
	}
	*m = out
	return nil
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", src)
	}
}
