package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".receiptsync", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.backend", "s3"))

	val, ok := store.Get("storage.backend")
	assert.True(t, ok)
	assert.Equal(t, "s3", val)
	assert.Equal(t, "s3", store.GetString("storage.backend"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("slack.max_lines", 12))
	require.NoError(t, store.Set("storage.s3.use_ssl", true))

	assert.Equal(t, 12, store.GetInt("slack.max_lines"))
	assert.True(t, store.GetBool("storage.s3.use_ssl"))

	// Wrong types and missing keys yield zero values
	assert.Equal(t, "", store.GetString("slack.max_lines"))
	assert.Equal(t, 0, store.GetInt("storage.s3.use_ssl"))
	assert.False(t, store.GetBool("missing"))
	assert.Equal(t, 0, store.GetInt("missing"))
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("storage.s3.bucket", "receipts"))
	require.NoError(t, store.Set("storage.s3.use_ssl", false))
	require.NoError(t, store.Set("slack.max_lines", 20))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[storage.s3]")
	assert.Contains(t, string(raw), "receipts")

	// Reload from disk: TOML integers come back as int64
	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "receipts", reloaded.GetString("storage.s3.bucket"))
	assert.False(t, reloaded.GetBool("storage.s3.use_ssl"))
	assert.Equal(t, 20, reloaded.GetInt("slack.max_lines"))
	assert.Equal(t, []string{"slack.max_lines", "storage.s3.bucket", "storage.s3.use_ssl"}, reloaded.Keys())
}

func TestConfigStore_Load_HandWritten(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[qonto]
login = "acme-1234"
bank_account_id = "acc-1"

[storage]
backend = "local"

[storage.local]
dir = "/srv/receipts"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "acme-1234", store.GetString("qonto.login"))
	assert.Equal(t, "local", store.GetString("storage.backend"))
	assert.Equal(t, "/srv/receipts", store.GetString("storage.local.dir"))
}

func TestConfigStore_Set_ConflictRollsBack(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("storage", "flat"))
	err = store.Set("storage.backend", "s3")

	assert.Error(t, err)
	_, ok := store.Get("storage.backend")
	assert.False(t, ok, "failed Set must not leave the value behind")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("qonto.secret", "s3cr3t"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_SetWithUnmarshallableValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Channels cannot be marshaled to TOML
	err = store.Set("channel", make(chan int))
	assert.Error(t, err)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("history.keep", 50)
			_ = store.GetInt("history.keep")
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.GetInt("history.keep"))
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{
		"a.b.c": 1,
		"a.d":   "x",
		"e":     true,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": map[string]any{"c": 1},
			"d": "x",
		},
		"e": true,
	}, nested)

	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
