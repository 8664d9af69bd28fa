// Package testutil provides the shared test helpers for the pharmacy backend:
// in-memory SQLite databases, seeded master data, an event recorder and
// JSON helpers for the HTTP API.
package testutil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// NewTestUUID returns the same UUID for the same seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(testNamespace, []byte(seed))
}
