package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://api.notion.com/v1", cfg.NotionAPIBase)
	assert.Equal(t, "2022-06-28", cfg.NotionVersion)
	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryDelay)
	assert.True(t, cfg.ProvisionResults)
	assert.Equal(t, ":3000", cfg.ListenAddr())
	assert.False(t, cfg.ExportEnabled())
}

func TestApplyTypedValues(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		KeyPageSize:         "25",
		KeyMaxRetries:       "3",
		KeyRetryDelay:       "500ms",
		KeyRequestTimeout:   "",
		KeyProvisionResults: "false",
		KeyLogPretty:        "true",
		KeyPort:             ":8080",
		KeyHandlerTimeout:   "90s",
		KeyTemplatePageID:   "template-1",
	})
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout, "empty typed values keep the default")
	assert.False(t, cfg.ProvisionResults)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, 90*time.Second, cfg.HandlerTimeout)
	assert.Equal(t, "template-1", cfg.TemplatePageID)
}

func TestApplyClampsPageSize(t *testing.T) {
	cfg, err := FromMap(map[string]string{KeyPageSize: "500"})
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.PageSize)

	cfg, err = FromMap(map[string]string{KeyHandlerTimeout: "0s"})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.HandlerTimeout)
}

func TestApplyRejectsBadValues(t *testing.T) {
	for key, v := range map[string]string{
		KeyPageSize:         "many",
		KeyRetryDelay:       "soon",
		KeyProvisionResults: "maybe",
	} {
		_, err := FromMap(map[string]string{key: v})
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate(t *testing.T) {
	cfg, err := FromMap(map[string]string{KeyNotionToken: "secret"})
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))

	var ie *IncompleteError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []string{KeyCourseDatabaseID, KeySemesterDatabaseID}, ie.Missing)

	cfg.CourseDatabaseID = "c"
	cfg.SemesterDatabaseID = "s"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesEnvironment(t *testing.T) {
	t.Setenv(KeyNotionToken, "from-env")
	path := filepath.Join(t.TempDir(), "absent.env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.NotionToken)
	assert.Equal(t, path, cfg.EnvFile)
}

func TestLoadFileWinsOverEnvironment(t *testing.T) {
	t.Setenv(KeyNotionToken, "from-env")
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("NOTION_API_KEY=from-file\nPAGE_SIZE=10\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.NotionToken)
	assert.Equal(t, 10, cfg.PageSize)
}

func TestPersistMergesKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("NOTION_API_KEY=secret\nPORT=4000\n"), 0o600))

	require.NoError(t, Persist(path, map[string]string{KeyQuoteBlockID: "quote-1", KeyPort: "5000"}))

	values, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", values[KeyNotionToken])
	assert.Equal(t, "quote-1", values[KeyQuoteBlockID])
	assert.Equal(t, "5000", values[KeyPort])
}

func TestPersistCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.env")
	require.NoError(t, Persist(path, map[string]string{KeyParentPageID: "p"}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "p", cfg.ParentPageID)
}
