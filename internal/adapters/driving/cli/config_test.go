package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/receiptsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

func TestConfigCmd_Path(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "path", "--config-dir", dir)

	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(dir, "config.toml"))
}

func TestConfigCmd_SetGetList(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "config", "set", "qonto.login", "acme-1234", "--config-dir", dir)
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "qonto.secret", "s3cr3t-value", "--config-dir", dir)
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "slack.max_lines", "12", "--config-dir", dir)
	require.NoError(t, err)

	out, err := execute(t, "config", "get", "qonto.login", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "acme-1234")

	out, err = execute(t, "config", "list", "--config-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "qonto.login = acme-1234")
	assert.Contains(t, out, "qonto.secret = ****alue")
	assert.NotContains(t, out, "s3cr3t")

	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	settings, err := file.LoadSettings(store, nil)
	require.NoError(t, err)
	assert.Equal(t, 12, settings.Slack.MaxLines)
}

func TestConfigCmd_SetRejectsBadValue(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "config", "set", "history.enabled", "sometimes", "--config-dir", dir)

	require.Error(t, err)
	assert.Equal(t, ExitUsage, exitCode(err))
}

func TestConfigCmd_GetMissingKey(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "config", "get", "storage.backend", "--config-dir", dir)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigCmd_ListEmpty(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "config", "list", "--config-dir", dir)

	require.NoError(t, err)
	assert.Contains(t, out, "No values set")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "****7890", mask("1234567890"))
}
