// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidName        = errors.New("name must be at least 2 characters")
	ErrInvalidTicket      = errors.New("invalid or expired verification")
)

// MinNameLength is the shortest accepted display name.
const MinNameLength = 2

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// TicketParser resolves a verification ticket to the email it proves.
type TicketParser interface {
	Parse(ticket string) (string, error)
}

type Service struct {
	repo              *repository.Repository
	tickets           TicketParser
	passwordValidator *PasswordValidator
	cost              int
}

func NewService(repo *repository.Repository, tickets TicketParser) *Service {
	return &Service{
		repo:              repo,
		tickets:           tickets,
		passwordValidator: DefaultPasswordValidator(),
		cost:              bcrypt.DefaultCost,
	}
}

// PasswordValidator returns the password validator for use in handlers
func (s *Service) PasswordValidator() *PasswordValidator {
	return s.passwordValidator
}

// RegisterParams holds the parameters for user registration. Ticket must
// prove ownership of Email.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Ticket   string
	Role     string
}

// ValidatePassword validates a password and returns the validation result
func (s *Service) ValidatePassword(password string, userAttributes ...string) ValidationResult {
	return s.passwordValidator.Validate(password, userAttributes...)
}

// Register creates a verified user account for the email proven by
// params.Ticket. The ticket is not spent, so a rejected registration can be
// retried with it until it expires.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	return s.create(ctx, params, true)
}

func (s *Service) create(ctx context.Context, params RegisterParams, requireTicket bool) (*models.User, error) {
	name := strings.TrimSpace(params.Name)
	if utf8.RuneCountInString(name) < MinNameLength {
		return nil, ErrInvalidName
	}

	email := repository.NormalizeEmail(params.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}

	if requireTicket && !s.proves(params.Ticket, email) {
		slog.Warn("register_failed", "email", email, "reason", "unverified_email")
		return nil, ErrInvalidTicket
	}

	validation := s.passwordValidator.Validate(params.Password, email, localPart(email), name)
	if !validation.Valid {
		return nil, &PasswordValidationError{Errors: validation.Errors}
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := params.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
		IsVerified:   true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", email)

	return user, nil
}

// Login authenticates a user and returns the user if successful.
// Unknown users, wrong passwords and unverified accounts all yield
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = repository.NormalizeEmail(email)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		slog.Warn("login_failed", "email", email, "reason", "unverified")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return user, nil
}

// ResetPassword sets a new password for the account proven by ticket.
func (s *Service) ResetPassword(ctx context.Context, ticket, newPassword string) (*models.User, error) {
	email, err := s.tickets.Parse(ticket)
	if err != nil {
		return nil, ErrInvalidTicket
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	validation := s.passwordValidator.Validate(newPassword, user.Email, localPart(user.Email), user.Name)
	if !validation.Valid {
		return nil, &PasswordValidationError{Errors: validation.Errors}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdateUserPassword(ctx, user.ID, string(passwordHash)); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	if !user.IsVerified {
		if err := s.repo.MarkUserVerified(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("failed to mark user verified: %w", err)
		}
		user.IsVerified = true
	}

	slog.Info("password_reset", "user_id", user.ID)
	return user, nil
}

// SetAdmin sets or removes admin status for a user
func (s *Service) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	role := models.RoleUser
	if isAdmin {
		role = models.RoleAdmin
	}
	return s.repo.SetUserRole(ctx, userID, role)
}

// EnsureAdmin ensures at least one admin exists, creating one if needed
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	count, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if count > 0 {
		return nil
	}

	_, err = s.create(ctx, RegisterParams{
		Name:     "Administrator",
		Email:    email,
		Password: password,
		Role:     models.RoleAdmin,
	}, false)
	if err == nil {
		slog.Info("admin_created", "email", repository.NormalizeEmail(email))
		return nil
	}
	if !errors.Is(err, ErrUserExists) {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.SetAdmin(ctx, existing.ID, true); err != nil {
		return fmt.Errorf("failed to set admin: %w", err)
	}
	slog.Info("admin_promoted", "user_id", existing.ID)
	return nil
}

// proves reports whether ticket was issued for email.
func (s *Service) proves(ticket, email string) bool {
	if s.tickets == nil || ticket == "" {
		return false
	}
	proven, err := s.tickets.Parse(ticket)
	return err == nil && proven == email
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
