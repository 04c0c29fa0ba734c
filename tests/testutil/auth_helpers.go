package testutil

import (
	"testing"

	"github.com/summitworks/training-api/config"
	"github.com/summitworks/training-api/middleware"
	"github.com/summitworks/training-api/models"
)

// TestJWTSecret is the signing secret used by test configurations.
const TestJWTSecret = "summitworks-test-secret"

// AdminToken issues a signed token for a fake admin user.
func AdminToken(t *testing.T, cfg *config.Config) string {
	t.Helper()

	token, err := middleware.GenerateToken(cfg, 1, models.RoleAdmin)
	if err != nil {
		t.Fatalf("Failed to generate admin token: %v", err)
	}
	return token
}

// StaffToken issues a signed token for a fake staff user.
func StaffToken(t *testing.T, cfg *config.Config) string {
	t.Helper()

	token, err := middleware.GenerateToken(cfg, 2, models.RoleStaff)
	if err != nil {
		t.Fatalf("Failed to generate staff token: %v", err)
	}
	return token
}
