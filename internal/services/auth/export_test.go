// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import "golang.org/x/crypto/bcrypt"

// UseMinCost makes password hashing fast for tests.
func (s *Service) UseMinCost() {
	s.cost = bcrypt.MinCost
}
