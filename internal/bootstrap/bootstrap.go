// Package bootstrap seeds the database on first boot.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"seoscout/internal/config"
	"seoscout/pkg/models"
)

// minKeyLength matches the auth middleware, which slices the first 8
// characters off a presented token as the lookup prefix.
const minKeyLength = 8

// KeyStore is the slice of the store that seeding needs.
type KeyStore interface {
	CountAPIKeys(ctx context.Context) (int, error)
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

// EnsureAdminAPIKey creates an admin-scoped API key from ADMIN_API_KEY when
// the key table is empty, so a fresh deployment can reach the key management
// endpoints. Once any key exists the configured value is ignored.
func EnsureAdminAPIKey(ctx context.Context, st KeyStore, cfg config.AuthConfig) error {
	if cfg.AdminAPIKey == "" {
		return nil
	}
	if len(cfg.AdminAPIKey) < minKeyLength {
		return fmt.Errorf("ADMIN_API_KEY must be at least %d characters", minKeyLength)
	}

	count, err := st.CountAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("count api keys: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminAPIKey), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin key: %w", err)
	}

	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      "admin",
		KeyHash:   string(hash),
		KeyPrefix: cfg.AdminAPIKey[:minKeyLength],
		Scopes:    []string{"read", "write", "admin"},
		CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateAPIKey(ctx, key); err != nil {
		return fmt.Errorf("create admin key: %w", err)
	}

	slog.Info("admin API key seeded", "key_prefix", key.KeyPrefix)
	return nil
}
