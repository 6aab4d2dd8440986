package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/service"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store"
	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk shape of SEED_FILE:
//
//	users:
//	  - name: Root
//	    email: root@example.com
//	    password: change-me
//	    role: admin
type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

func LoadSeedFile(path string) (SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedFile{}, err
	}

	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return SeedFile{}, fmt.Errorf("parse seed file: %w", err)
	}
	return f, nil
}

// ApplySeed creates every listed account whose email is not taken yet. All
// inserts share one transaction, so a bad entry leaves nothing behind.
func ApplySeed(ctx context.Context, st store.Store, f SeedFile, logger *slog.Logger) (int, error) {
	created := 0

	err := st.WithTx(ctx, func(tx store.Tx) error {
		creds := &service.CredentialService{Store: tx}

		for i, u := range f.Users {
			role, err := domain.ParseRole(u.Role)
			if err != nil {
				return fmt.Errorf("seed user %d: %w", i, err)
			}
			if u.Name == "" || u.Email == "" || utf8.RuneCountInString(u.Password) < service.MinPasswordLength {
				return fmt.Errorf("seed user %d: name, email and a %d+ character password are required", i, service.MinPasswordLength)
			}

			// Checked up front: postgres aborts the transaction on a
			// unique violation.
			_, exists, err := creds.FindByEmail(ctx, u.Email)
			if err != nil {
				return fmt.Errorf("seed user %d: %w", i, err)
			}
			if exists {
				logger.Debug("seed user exists, skipping", slog.String("email", domain.NormalizeEmail(u.Email)))
				continue
			}

			if _, err := creds.CreateSeeded(ctx, u.Name, u.Email, u.Password, role); err != nil {
				return fmt.Errorf("seed user %d: %w", i, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
