package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/coursehub/internal/catalog/domain"
	"github.com/aussiebroadwan/coursehub/internal/catalog/store/drivers/sqlite"
	"github.com/aussiebroadwan/coursehub/pkg/cryptox"
	"github.com/aussiebroadwan/coursehub/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	cryptox.SetPepper("app-test-pepper")
	os.Exit(m.Run())
}

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestApplySeed(t *testing.T) {
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	f, err := LoadSeedFile(writeSeed(t, `
users:
  - name: Root
    email: Root@Example.com
    password: change-me
    role: admin
  - name: Ada
    email: ada@example.com
    password: secret1
    role: instructor
`))
	require.NoError(t, err)
	require.Len(t, f.Users, 2)

	n, err := ApplySeed(ctx, st, f, slogx.Discard())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	root, err := st.Users().GetUserByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, root.Role)
	require.NoError(t, cryptox.VerifyPassword("change-me", root.PasswordHash))

	t.Run("idempotent", func(t *testing.T) {
		n, err := ApplySeed(ctx, st, f, slogx.Discard())
		require.NoError(t, err)
		require.Zero(t, n)

		count, err := st.Users().CountUsers(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 2, count)
	})

	t.Run("bad entry rolls back the batch", func(t *testing.T) {
		bad := SeedFile{Users: []SeedUser{
			{Name: "New", Email: "new@example.com", Password: "secret1", Role: "student"},
			{Name: "Bad", Email: "bad@example.com", Password: "secret1", Role: "wizard"},
		}}
		_, err := ApplySeed(ctx, st, bad, slogx.Discard())
		require.Error(t, err)

		_, err = st.Users().GetUserByEmail(ctx, "new@example.com")
		require.Error(t, err)
	})

	t.Run("password length counts characters", func(t *testing.T) {
		short := SeedFile{Users: []SeedUser{
			{Name: "Short", Email: "short@example.com", Password: "ééé", Role: "admin"},
		}}
		_, err := ApplySeed(ctx, st, short, slogx.Discard())
		require.Error(t, err)

		_, err = st.Users().GetUserByEmail(ctx, "short@example.com")
		require.Error(t, err)
	})
}

func TestLoadSeedFileErrors(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadSeedFile(writeSeed(t, "users: [this is: not: valid"))
	require.Error(t, err)
}
