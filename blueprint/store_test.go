package blueprint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestStore_SaveGetListDelete(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, nil, nil)

	bp := &Blueprint{
		ID:           "smart-auth-routes",
		Name:         "Smart Auth Routes",
		Version:      "1.0.0",
		Strategy:     StrategyEmbeddedTemplate,
		Parameters:   map[string]ParameterSpec{},
		CodeTemplate: CodeTemplate{Language: "python", Content: "x"},
	}

	path, err := store.Save(LayerRoutes, bp)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "api", "routes", "smart-auth-routes.json"), path)

	got, err := store.Get("smart-auth-routes")
	require.NoError(t, err)
	assert.Equal(t, "Smart Auth Routes", got.Name)
	assert.True(t, got.Has(FieldStrategy))

	// Saving again under another layer overwrites in place.
	bp.Name = "Renamed"
	path2, err := store.Save(LayerSystem, bp)
	require.NoError(t, err)
	assert.Equal(t, path, path2)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].Name)

	require.NoError(t, store.Delete("smart-auth-routes"))
	_, err = store.Get("smart-auth-routes")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_SaveRejectsBadID(t *testing.T) {
	store := NewStore(t.TempDir(), nil, nil)
	_, err := store.Save(LayerRoutes, &Blueprint{ID: "auth-routes"})
	assert.True(t, errors.Is(err, ErrInvalidID))
}

func TestStore_ListDefaultsAndSkips(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "system", "smart-health-check.json"), `{"id":"smart-health-check"}`)
	writeFile(t, filepath.Join(root, "tools", "smart-broken.json"), `{broken`)
	writeFile(t, filepath.Join(root, "README.md"), "ignored")

	list, err := NewStore(root, nil, nil).List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "smart-health-check", list[0].Name)
	assert.Equal(t, "1.0.0", list[0].Version)
}

func TestStore_DuplicateIDs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "api", "routes", "smart-a.json"), `{}`)
	writeFile(t, filepath.Join(root, "system", "smart-a.json"), `{}`)

	_, err := NewStore(root, nil, nil).List()
	assert.True(t, errors.Is(err, ErrDuplicateID))
}

func TestStore_MissingRoot(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope"), nil, nil)
	list, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_LayerOverride(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root, map[Layer]string{LayerDatabase: "database/traditional"}, nil)
	dir, err := store.LayerDir(LayerDatabase)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "database", "traditional"), dir)
}

func TestStore_Resolve(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "api", "routes", "smart-x-y.json")
	writeFile(t, path, scenarioJSON)
	store := NewStore(root, nil, nil)

	bp, got, err := store.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "smart-x-y", bp.ID)

	bp, got, err = store.Resolve("smart-x-y")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "smart-x-y", bp.ID)

	_, _, err = store.Resolve("smart-missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseLayer(t *testing.T) {
	l, err := ParseLayer(" Routes ")
	require.NoError(t, err)
	assert.Equal(t, LayerRoutes, l)

	_, err = ParseLayer("views")
	assert.Error(t, err)
}

func TestResolveFiles(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "api", "routes", "smart-a-routes.json")
	b := filepath.Join(root, "system", "smart-b.json")
	writeFile(t, a, `{}`)
	writeFile(t, b, `{}`)
	writeFile(t, filepath.Join(root, "system", "notes.txt"), "x")

	files, err := ResolveFiles([]string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = ResolveFiles([]string{filepath.Join(root, "**", "*-routes.json"), a})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	missing := filepath.Join(root, "missing.json")
	files, err = ResolveFiles([]string{missing})
	require.NoError(t, err)
	assert.Equal(t, []string{missing}, files)

	_, err = ResolveFiles([]string{filepath.Join(root, "**", "nothing-*.json")})
	assert.Error(t, err)
}
