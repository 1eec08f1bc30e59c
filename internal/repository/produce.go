// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
)

// ListProduce returns all catalog entries, newest first.
func (r *Repository) ListProduce(ctx context.Context) ([]models.Produce, error) {
	items := []models.Produce{}
	err := r.db.SelectContext(ctx, &items, `SELECT * FROM produce ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetProduce retrieves a catalog entry by ID.
func (r *Repository) GetProduce(ctx context.Context, id string) (*models.Produce, error) {
	var item models.Produce
	if err := r.db.GetContext(ctx, &item, `SELECT * FROM produce WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &item, nil
}

// CountProduce returns the number of catalog entries per category.
func (r *Repository) CountProduce(ctx context.Context) (map[string]int64, error) {
	rows := []struct {
		Category string `db:"category"`
		Count    int64  `db:"n"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `SELECT category, COUNT(*) AS n FROM produce GROUP BY category`)
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{models.CategoryFruit: 0, models.CategoryVegetable: 0}
	for _, row := range rows {
		counts[row.Category] = row.Count
	}
	return counts, nil
}

// CreateProduce inserts a catalog entry. The caller assigns the ID.
func (r *Repository) CreateProduce(ctx context.Context, item *models.Produce) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO produce (id, name, category, description, calories, vitamins, minerals,
			health_benefits, seasonal_availability, is_organic, origin_story, image_url, created_at, updated_at)
		 VALUES (:id, :name, :category, :description, :calories, :vitamins, :minerals,
			:health_benefits, :seasonal_availability, :is_organic, :origin_story, :image_url, :created_at, :updated_at)`,
		item)
	return wrapError(err)
}

// UpdateProduce writes all editable fields of a catalog entry.
func (r *Repository) UpdateProduce(ctx context.Context, item *models.Produce) error {
	item.UpdatedAt = time.Now().UTC()

	res, err := r.db.NamedExecContext(ctx,
		`UPDATE produce SET name = :name, category = :category, description = :description,
			calories = :calories, vitamins = :vitamins, minerals = :minerals,
			health_benefits = :health_benefits, seasonal_availability = :seasonal_availability,
			is_organic = :is_organic, origin_story = :origin_story, image_url = :image_url,
			updated_at = :updated_at
		 WHERE id = :id`,
		item)
	if err != nil {
		return wrapError(err)
	}
	return requireAffected(res)
}

// UpdateProduceImage sets the image reference of a catalog entry.
func (r *Repository) UpdateProduceImage(ctx context.Context, id, imageURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE produce SET image_url = ?, updated_at = ? WHERE id = ?`,
		imageURL, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeleteProduce removes a catalog entry.
func (r *Repository) DeleteProduce(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM produce WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
