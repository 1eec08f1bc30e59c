// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import "time"

// SetBackoff shortens the retry delay for tests.
func (s *Service) SetBackoff(d time.Duration) {
	s.backoff = d
}
