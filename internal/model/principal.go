package model

import "github.com/google/uuid"

// Principal is the authenticated operator. The service is single tenant, so
// any valid token grants full access.
type Principal struct {
	UserID uuid.UUID
	Name   string
}
