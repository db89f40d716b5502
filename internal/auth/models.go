package auth

import "time"

// Identity is the authenticated principal a request acts as. Subject is the
// owner id every file and share record is scoped to.
type Identity struct {
	Subject   string
	Email     string
	ExpiresAt time.Time
}
