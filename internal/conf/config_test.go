package conf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mickamy/gotrail/internal/conf"
)

func TestNewConfig_Defaults(t *testing.T) {
	c, err := conf.NewConfig("")
	require.NoError(t, err)

	assert.Equal(t, "info", c.LogConfig.Level)
	assert.Equal(t, "gotrail", c.MongodbConfig.DB)
	assert.Equal(t, "actions", c.MongodbConfig.ActionCollection)
	assert.Equal(t, "actions", c.PostgresConfig.ActionTable)
}

func TestNewConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte(`
log:
  level: debug
mongodb:
  uri: mongodb://mongo:27017
  db: audit
postgres:
  action_table: audit.actions
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))
	t.Setenv("MONGODB_DB", "from_env")

	c, err := conf.NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogConfig.Level)
	assert.Equal(t, "mongodb://mongo:27017", c.MongodbConfig.URI)
	assert.Equal(t, "from_env", c.MongodbConfig.DB)
	assert.Equal(t, "actions", c.MongodbConfig.ActionCollection)
	assert.Equal(t, "audit.actions", c.PostgresConfig.ActionTable)
}

func TestNewConfig_MissingFile(t *testing.T) {
	_, err := conf.NewConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
