// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package catalog manages the fruit and vegetable catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidID     = errors.New("invalid fruit id format")
	ErrNotFound      = errors.New("fruit not found")
	ErrDuplicateName = errors.New("a fruit with this name already exists")
)

const (
	msgRequired = "Name and category are required fields"
	msgCategory = "Category must be either 'fruit' or 'vegetable'"
)

// ValidationError describes rejected input. Fields maps JSON field names to
// messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Service implements catalog operations on top of the repository.
type Service struct {
	repo     *repository.Repository
	validate *validator.Validate
	newID    func() string
}

// NewService creates a catalog service.
func NewService(repo *repository.Repository) *Service {
	return &Service{
		repo:     repo,
		validate: newValidator(),
		newID:    uuid.NewString,
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseID checks that id is a well-formed catalog id.
func ParseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

// List returns the catalog filtered and sorted by q. A zero Query returns
// every entry, newest first.
func (s *Service) List(ctx context.Context, q Query) ([]models.Produce, error) {
	items, err := s.repo.ListProduce(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing produce: %w", err)
	}
	return Sort(Filter(items, q), q.Sort), nil
}

// Get returns a single entry.
func (s *Service) Get(ctx context.Context, id string) (*models.Produce, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.GetProduce(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// Counts returns the number of entries per category.
func (s *Service) Counts(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountProduce(ctx)
}

// Create validates in and stores a new entry.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Produce, error) {
	in.normalize()
	if in.Name == "" || in.Category == "" {
		return nil, &ValidationError{Message: msgRequired, Fields: s.fieldErrors(in)}
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	item := in.produce(s.newID())
	if err := s.repo.CreateProduce(ctx, item); err != nil {
		return nil, translate(err)
	}

	slog.Info("fruit_created", "id", item.ID, "name", item.Name, "category", item.Category)
	return item, nil
}

// Update applies a partial update to an existing entry.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*models.Produce, error) {
	id, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := s.check(in); err != nil {
		return nil, err
	}

	item, err := s.repo.GetProduce(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	in.apply(item)
	if err := s.repo.UpdateProduce(ctx, item); err != nil {
		return nil, translate(err)
	}

	slog.Info("fruit_updated", "id", item.ID)
	return item, nil
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduce(ctx, id); err != nil {
		return translate(err)
	}
	slog.Info("fruit_deleted", "id", id)
	return nil
}

// SetImage stores the image reference of an entry.
func (s *Service) SetImage(ctx context.Context, id, imageURL string) error {
	imageURL = strings.TrimSpace(imageURL)
	if strings.TrimSpace(id) == "" || imageURL == "" {
		return &ValidationError{Message: "Fruit ID and image URL are required"}
	}
	id, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.validate.Var(imageURL, "url"); err != nil {
		return &ValidationError{
			Message: "Image must be a valid URL string",
			Fields:  map[string]string{"imageUrl": "must be a valid URL"},
		}
	}
	if err := s.repo.UpdateProduceImage(ctx, id, imageURL); err != nil {
		return translate(err)
	}
	return nil
}

func (s *Service) check(in any) error {
	fields := s.fieldErrors(in)
	if len(fields) == 0 {
		return nil
	}
	if _, ok := fields["category"]; ok {
		return &ValidationError{Message: msgCategory, Fields: fields}
	}
	for _, key := range []string{"name", "calories", "imageUrl", "image", "minerals", "vitamins", "healthBenefits"} {
		if msg, ok := fields[key]; ok {
			return &ValidationError{Message: msg, Fields: fields}
		}
	}
	for _, msg := range fields {
		return &ValidationError{Message: msg, Fields: fields}
	}
	return nil
}

func (s *Service) fieldErrors(in any) map[string]string {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := topLevelField(fe.Namespace())
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = message(key, fe)
	}
	return fields
}

// topLevelField turns "CreateInput.minerals[iron]" into "minerals".
func topLevelField(namespace string) string {
	_, field, _ := strings.Cut(namespace, ".")
	if i := strings.IndexAny(field, ".["); i >= 0 {
		field = field[:i]
	}
	return field
}

func message(field string, fe validator.FieldError) string {
	label := fieldLabel(field)
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "oneof":
		if field == "category" {
			return msgCategory
		}
		return label + " must be one of " + fe.Param()
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "url":
		return label + " must be a valid URL"
	case "gte":
		return label + " must not be negative"
	default:
		return label + " is invalid"
	}
}

func fieldLabel(field string) string {
	switch field {
	case "imageUrl", "image":
		return "Image URL"
	case "healthBenefits":
		return "Health benefits"
	case "seasonalAvailability":
		return "Seasonal availability"
	case "originStory":
		return "Origin story"
	case "":
		return "Value"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrDuplicateName
	}
	return err
}
