// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
)

// Calories accepts a JSON number, a numeric string, an empty string or null.
type Calories struct {
	Value *float64
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Calories) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		c.Value = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		return c.Parse(s)
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("calories must be a number")
	}
	c.Value = &f
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Calories) MarshalJSON() ([]byte, error) {
	if c.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*c.Value)
}

// Parse reads calories from form or string input. Blank input clears the value.
func (c *Calories) Parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		c.Value = nil
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("calories must be a number")
	}
	c.Value = &f
	return nil
}

// CreateInput lists the fields accepted when creating a catalog entry.
// Anything else in a request body is ignored.
type CreateInput struct { //nolint:govet // fieldalignment: readability over optimization
	Name                 string             `json:"name" validate:"required,max=100"`
	Category             string             `json:"category" validate:"required,oneof=fruit vegetable"`
	Description          string             `json:"description" validate:"max=2000"`
	Calories             Calories           `json:"calories" validate:"-"`
	Vitamins             []string           `json:"vitamins" validate:"dive,required,max=100"`
	Minerals             map[string]float64 `json:"minerals" validate:"dive,keys,required,max=100,endkeys,gte=0"`
	HealthBenefits       []string           `json:"healthBenefits" validate:"dive,required,max=300"`
	SeasonalAvailability string             `json:"seasonalAvailability" validate:"max=200"`
	IsOrganic            bool               `json:"isOrganic"`
	OriginStory          string             `json:"originStory" validate:"max=5000"`
	ImageURL             string             `json:"imageUrl" validate:"omitempty,url"`
	Image                string             `json:"image" validate:"omitempty,url"`
}

func (in *CreateInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	in.Vitamins = cleanList(in.Vitamins)
	in.HealthBenefits = cleanList(in.HealthBenefits)
	if in.ImageURL == "" {
		in.ImageURL = in.Image
	}
}

func (in *CreateInput) produce(id string) *models.Produce {
	minerals := models.MineralMap{}
	for k, v := range in.Minerals {
		minerals[strings.TrimSpace(k)] = v
	}
	return &models.Produce{
		ID:                   id,
		Name:                 in.Name,
		Category:             in.Category,
		Description:          strings.TrimSpace(in.Description),
		Calories:             in.Calories.Value,
		Vitamins:             models.StringList(orEmpty(in.Vitamins)),
		Minerals:             minerals,
		HealthBenefits:       models.StringList(orEmpty(in.HealthBenefits)),
		SeasonalAvailability: strings.TrimSpace(in.SeasonalAvailability),
		IsOrganic:            in.IsOrganic,
		OriginStory:          strings.TrimSpace(in.OriginStory),
		ImageURL:             in.ImageURL,
	}
}

// UpdateInput carries a partial update. Nil fields are left unchanged.
type UpdateInput struct { //nolint:govet // fieldalignment: readability over optimization
	Name                 *string             `json:"name" validate:"omitnil,required,max=100"`
	Category             *string             `json:"category" validate:"omitnil,oneof=fruit vegetable"`
	Description          *string             `json:"description" validate:"omitnil,max=2000"`
	Calories             *Calories           `json:"calories" validate:"-"`
	Vitamins             *[]string           `json:"vitamins" validate:"omitnil,dive,required,max=100"`
	Minerals             *map[string]float64 `json:"minerals" validate:"omitnil,dive,keys,required,max=100,endkeys,gte=0"`
	HealthBenefits       *[]string           `json:"healthBenefits" validate:"omitnil,dive,required,max=300"`
	SeasonalAvailability *string             `json:"seasonalAvailability" validate:"omitnil,max=200"`
	IsOrganic            *bool               `json:"isOrganic"`
	OriginStory          *string             `json:"originStory" validate:"omitnil,max=5000"`
	ImageURL             *string             `json:"imageUrl" validate:"omitempty,url"`
	Image                *string             `json:"image" validate:"omitempty,url"`
}

func (in *UpdateInput) normalize() {
	if in.Name != nil {
		*in.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		*in.Category = strings.ToLower(strings.TrimSpace(*in.Category))
	}
	if in.ImageURL == nil {
		in.ImageURL = in.Image
	}
}

func (in *UpdateInput) apply(item *models.Produce) {
	if in.Name != nil {
		item.Name = *in.Name
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Calories != nil {
		item.Calories = in.Calories.Value
	}
	if in.Vitamins != nil {
		item.Vitamins = models.StringList(orEmpty(cleanList(*in.Vitamins)))
	}
	if in.Minerals != nil {
		minerals := models.MineralMap{}
		for k, v := range *in.Minerals {
			minerals[strings.TrimSpace(k)] = v
		}
		item.Minerals = minerals
	}
	if in.HealthBenefits != nil {
		item.HealthBenefits = models.StringList(orEmpty(cleanList(*in.HealthBenefits)))
	}
	if in.SeasonalAvailability != nil {
		item.SeasonalAvailability = strings.TrimSpace(*in.SeasonalAvailability)
	}
	if in.IsOrganic != nil {
		item.IsOrganic = *in.IsOrganic
	}
	if in.OriginStory != nil {
		item.OriginStory = strings.TrimSpace(*in.OriginStory)
	}
	if in.ImageURL != nil {
		item.ImageURL = *in.ImageURL
	}
}

func cleanList(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func orEmpty(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
