package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.MongoURI)
	assert.Equal(t, "tcg_catalog", cfg.Database.MongoDatabase)
	assert.Equal(t, "@every 1h", cfg.Audit.Schedule)
	assert.Equal(t, 120, cfg.RateLimit.Requests)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  mode: release
database:
  driver: sqlite
  sqlite_path: /var/lib/catalog.db
redis:
  enabled: true
  host: cache
rate_limit:
  enabled: true
  requests: 10
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("AUDIT_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr())
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 60, cfg.RateLimit.WindowSeconds)
	assert.True(t, cfg.Audit.Enabled)

	driver, dsn, err := cfg.Database.SQL()
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, driver)
	assert.Equal(t, "/var/lib/catalog.db", dsn)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [oops"))
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "cassandra")
		_, err := Load(writeConfig(t, ""))
		assert.ErrorContains(t, err, "cassandra")
	})

	t.Run("rate limit without redis", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_ENABLED", "true")
		_, err := Load(writeConfig(t, ""))
		assert.Error(t, err)
	})
}

func TestDatabaseConfig_SQL(t *testing.T) {
	t.Run("postgres fields", func(t *testing.T) {
		db := DatabaseConfig{Driver: DriverPostgres, Host: "db", Port: 5432, User: "u", Password: "p", DBName: "catalog", SSLMode: "disable"}
		driver, dsn, err := db.SQL()
		require.NoError(t, err)
		assert.Equal(t, DriverPostgres, driver)
		assert.Equal(t, "host=db port=5432 user=u password=p dbname=catalog sslmode=disable", dsn)
	})

	t.Run("postgres url", func(t *testing.T) {
		db := DatabaseConfig{URL: "postgres://u:p@db.example.com:5432/catalog?sslmode=disable"}
		driver, dsn, err := db.SQL()
		require.NoError(t, err)
		assert.Equal(t, DriverPostgres, driver)
		assert.Contains(t, dsn, "db.example.com")
		assert.Contains(t, dsn, "catalog")
	})

	t.Run("sqlite url", func(t *testing.T) {
		db := DatabaseConfig{URL: "sqlite:/tmp/catalog.db"}
		driver, dsn, err := db.SQL()
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, driver)
		assert.Contains(t, dsn, "catalog.db")
	})

	t.Run("mongo is not sql", func(t *testing.T) {
		_, _, err := (&DatabaseConfig{Driver: DriverMongo}).SQL()
		assert.Error(t, err)
	})
}

func TestLoad_DatabaseURLSelectsDriver(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db.example.com/catalog")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
}
