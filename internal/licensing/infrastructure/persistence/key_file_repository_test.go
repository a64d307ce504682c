package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kolabsys/phlesk/internal/licensing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyFileRepository(t *testing.T) {
	repo := NewKeyFileRepository("/tmp/test-keys.json", "kolab")
	assert.NotNil(t, repo)
	assert.Equal(t, "/tmp/test-keys.json", repo.FilePath())
}

func TestKeyFileRepository_Load_NoFile(t *testing.T) {
	repo := NewKeyFileRepository(filepath.Join(t.TempDir(), "nonexistent.json"), "kolab")

	license, err := repo.Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, license)
}

func TestKeyFileRepository_SaveAndLoad(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "keys.json")
	repo := NewKeyFileRepository(filePath, "kolab")
	ctx := context.Background()

	license := &domain.License{KeyBody: "-----BEGIN CERTIFICATE-----", App: "kolab 25"}
	require.NoError(t, repo.Save(ctx, license))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, *license, *loaded)
}

func TestKeyFileRepository_KeysAreScopedByModule(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "keys.json")
	ctx := context.Background()

	kolab := NewKeyFileRepository(filePath, "kolab")
	seafile := NewKeyFileRepository(filePath, "seafile")

	require.NoError(t, kolab.Save(ctx, &domain.License{KeyBody: "a", App: "kolab 10"}))
	require.NoError(t, seafile.Save(ctx, &domain.License{KeyBody: "b", App: "seafile 5"}))

	loaded, err := kolab.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.KeyBody)

	require.NoError(t, kolab.Delete(ctx))
	assert.False(t, kolab.Exists(ctx))
	assert.True(t, seafile.Exists(ctx))
}

func TestKeyFileRepository_Save_CreatesDirectory(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "nested", "deep", "keys.json")
	repo := NewKeyFileRepository(filePath, "kolab")

	require.NoError(t, repo.Save(context.Background(), &domain.License{KeyBody: "x"}))

	info, err := os.Stat(filePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestKeyFileRepository_Delete_NoFile(t *testing.T) {
	repo := NewKeyFileRepository(filepath.Join(t.TempDir(), "nonexistent.json"), "kolab")

	assert.NoError(t, repo.Delete(context.Background()))
}

func TestKeyFileRepository_Load_InvalidJSON(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "keys.json")
	require.NoError(t, os.WriteFile(filePath, []byte("not valid json"), 0600))

	repo := NewKeyFileRepository(filePath, "kolab")

	license, err := repo.Load(context.Background())
	assert.Error(t, err)
	assert.Nil(t, license)
	assert.False(t, repo.Exists(context.Background()))
}

func TestFakerStore_Load(t *testing.T) {
	store := NewFakerStore("kolab", 100)
	ctx := context.Background()

	first, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Contains(t, first.KeyBody, "BEGIN CERTIFICATE")

	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
}
