// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog_test

import (
	"context"
	"encoding/json"
	"testing"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/services/catalog"
	"codeberg.org/oliverandrich/greengrocer/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *catalog.Service {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	return catalog.NewService(repo)
}

func decodeCreate(t *testing.T, body string) catalog.CreateInput {
	t.Helper()
	var in catalog.CreateInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func decodeUpdate(t *testing.T, body string) catalog.UpdateInput {
	t.Helper()
	var in catalog.UpdateInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func ptr[T any](v T) *T { return &v }

func TestCreate_EmptyMineralsAccepted(t *testing.T) {
	svc := newService(t)

	item, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit","minerals":{}}`))

	require.NoError(t, err)
	assert.Equal(t, "Mango", item.Name)
	assert.Equal(t, models.MineralMap{}, item.Minerals)
	assert.Equal(t, models.StringList{}, item.Vitamins)
	assert.Equal(t, models.StringList{}, item.HealthBenefits)
	assert.False(t, item.IsOrganic)
	_, err = uuid.Parse(item.ID)
	assert.NoError(t, err)
}

func TestCreate_AllFields(t *testing.T) {
	svc := newService(t)

	item, err := svc.Create(context.Background(), decodeCreate(t, `{
		"name": " Spinach ",
		"category": "Vegetable",
		"description": "Leafy greens",
		"calories": "23",
		"vitamins": ["A", " ", "K"],
		"minerals": {"iron": 2.7},
		"healthBenefits": ["Bone health"],
		"seasonalAvailability": "Winter",
		"isOrganic": true,
		"originStory": "Persia",
		"image": "https://cdn.example.com/spinach.jpg",
		"role": "admin"
	}`))

	require.NoError(t, err)
	assert.Equal(t, "Spinach", item.Name)
	assert.Equal(t, models.CategoryVegetable, item.Category)
	require.NotNil(t, item.Calories)
	assert.InDelta(t, 23.0, *item.Calories, 0.001)
	assert.Equal(t, models.StringList{"A", "K"}, item.Vitamins)
	assert.Equal(t, models.MineralMap{"iron": 2.7}, item.Minerals)
	assert.True(t, item.IsOrganic)
	assert.Equal(t, "https://cdn.example.com/spinach.jpg", item.ImageURL)
}

func TestCreate_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		field   string
	}{
		{"missing name", `{"category":"fruit"}`, "Name and category are required fields", "name"},
		{"missing category", `{"name":"Mango"}`, "Name and category are required fields", "category"},
		{"bad category", `{"name":"Mango","category":"berry"}`, "Category must be either 'fruit' or 'vegetable'", "category"},
		{"negative mineral", `{"name":"Mango","category":"fruit","minerals":{"iron":-1}}`, "Minerals must not be negative", "minerals"},
		{"bad image", `{"name":"Mango","category":"fruit","imageUrl":"not a url"}`, "Image URL must be a valid URL", "imageUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t)

			_, err := svc.Create(context.Background(), decodeCreate(t, tt.body))

			var verr *catalog.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.message, verr.Message)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	svc := newService(t)
	_, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))

	assert.ErrorIs(t, err, catalog.ErrDuplicateName)
}

func TestCalories_Decode(t *testing.T) {
	tests := []struct {
		body  string
		want  *float64
		isErr bool
	}{
		{`{"calories": 60}`, ptr(60.0), false},
		{`{"calories": "60.5"}`, ptr(60.5), false},
		{`{"calories": ""}`, nil, false},
		{`{"calories": null}`, nil, false},
		{`{"calories": "lots"}`, nil, true},
		{`{"calories": true}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var in catalog.CreateInput
			err := json.Unmarshal([]byte(tt.body), &in)
			if tt.isErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, in.Calories.Value)
		})
	}
}

func TestGet(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)

	item, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mango", item.Name)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, catalog.ErrInvalidID)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestUpdate_Partial(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create(context.Background(), decodeCreate(t,
		`{"name":"Mango","category":"fruit","description":"Sweet","vitamins":["C"]}`))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, decodeUpdate(t, `{"isOrganic":true,"calories":99}`))

	require.NoError(t, err)
	assert.True(t, updated.IsOrganic)
	assert.InDelta(t, 99.0, *updated.Calories, 0.001)
	assert.Equal(t, "Sweet", updated.Description)
	assert.Equal(t, models.StringList{"C"}, updated.Vitamins)
}

func TestUpdate_InvalidCategoryLeavesRecord(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, decodeUpdate(t, `{"category":"berry","name":"Berry"}`))

	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Category must be either 'fruit' or 'vegetable'", verr.Message)

	item, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mango", item.Name)
	assert.Equal(t, models.CategoryFruit, item.Category)
}

func TestUpdate_Errors(t *testing.T) {
	svc := newService(t)
	mango, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), decodeCreate(t, `{"name":"Kiwi","category":"fruit"}`))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), "xyz", catalog.UpdateInput{})
	require.ErrorIs(t, err, catalog.ErrInvalidID)

	_, err = svc.Update(context.Background(), uuid.NewString(), catalog.UpdateInput{IsOrganic: ptr(true)})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.Update(context.Background(), mango.ID, catalog.UpdateInput{Name: ptr("Kiwi")})
	require.ErrorIs(t, err, catalog.ErrDuplicateName)

	_, err = svc.Update(context.Background(), mango.ID, catalog.UpdateInput{Name: ptr("  ")})
	var verr *catalog.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdate_ImageAlias(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, decodeUpdate(t, `{"image":"https://cdn.example.com/m.jpg"}`))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/m.jpg", updated.ImageURL)
}

func TestDelete(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), created.ID), catalog.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "nope"), catalog.ErrInvalidID)
}

func TestSetImage(t *testing.T) {
	svc := newService(t)
	created, err := svc.Create(context.Background(), decodeCreate(t, `{"name":"Mango","category":"fruit"}`))
	require.NoError(t, err)

	require.NoError(t, svc.SetImage(context.Background(), created.ID, "https://cdn.example.com/m.png"))
	item, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/m.png", item.ImageURL)

	var verr *catalog.ValidationError
	require.ErrorAs(t, svc.SetImage(context.Background(), created.ID, ""), &verr)
	require.ErrorAs(t, svc.SetImage(context.Background(), created.ID, "nope"), &verr)
	assert.ErrorIs(t, svc.SetImage(context.Background(), uuid.NewString(), "https://x.io/a.png"), catalog.ErrNotFound)
}

func TestList(t *testing.T) {
	svc := newService(t)
	for _, body := range []string{
		`{"name":"Mango","category":"fruit","calories":60,"vitamins":["C"]}`,
		`{"name":"apple","category":"fruit","calories":52,"isOrganic":true}`,
		`{"name":"Carrot","category":"vegetable","calories":41,"healthBenefits":["Vision"]}`,
	} {
		_, err := svc.Create(context.Background(), decodeCreate(t, body))
		require.NoError(t, err)
	}

	all, err := svc.List(context.Background(), catalog.Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Carrot", "apple", "Mango"}, names(all))

	byName, err := svc.List(context.Background(), catalog.Query{Sort: catalog.SortName})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "Carrot", "Mango"}, names(byName))

	fruits, err := svc.List(context.Background(), catalog.Query{Category: "fruit", Sort: catalog.SortCalories})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "Mango"}, names(fruits))
}

func names(items []models.Produce) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
