// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package media

import "time"

// SetBackoff shortens the retry delay for tests.
func (u *Uploader) SetBackoff(d time.Duration) {
	u.backoff = d
}
