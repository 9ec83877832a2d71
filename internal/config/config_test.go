package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/switchboard/pkg/errutil"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, DefaultAccessTokenExpireMinutes, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, DefaultConnectionPoolSize, cfg.ConnectionPoolSize)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.True(t, cfg.SecretGenerated)
	assert.Len(t, cfg.SecretKey, 43)
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("STORE", "memory")

	cfg, err := Load(newFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.False(t, cfg.SecretGenerated)
	assert.Equal(t, 15, cfg.AccessTokenExpireMinutes)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoad_ExplicitFlagWinsOverEnvironment(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")

	cfg, err := Load(newFlags(t, "--access-token-expire-minutes=5"), "")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.AccessTokenExpireMinutes)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "switchboard.yaml")
	content := "redis_dsn: redis://cache:6379/1\nconnection_pool_size: 20\nhttp_addr: \":9000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("HTTP_ADDR", ":9100")

	cfg, err := Load(newFlags(t), path)
	require.NoError(t, err)

	assert.Equal(t, "redis://cache:6379/1", cfg.RedisDSN)
	assert.Equal(t, 20, cfg.ConnectionPoolSize)
	assert.Equal(t, ":9100", cfg.HTTPAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(newFlags(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_INVALID")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	_, err := Load(newFlags(t, "--environment=production"), "")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	t.Setenv("SECRET_KEY", "prod-secret")
	cfg, err := Load(newFlags(t, "--environment=production"), "")
	require.NoError(t, err)
	assert.Equal(t, "prod-secret", cfg.SecretKey)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Environment:              EnvDevelopment,
			AccessTokenExpireMinutes: 30,
			Store:                    StorePostgres,
			PostgresDSN:              DefaultPostgresDSN,
			ConnectionPoolSize:       10,
			BcryptCost:               DefaultBcryptCost,
			LogFormat:                "json",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "memory store needs no dsn", mutate: func(c *Config) { c.Store = StoreMemory; c.PostgresDSN = "" }},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "staging" }, wantErr: true},
		{name: "zero token lifetime", mutate: func(c *Config) { c.AccessTokenExpireMinutes = 0 }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "mysql" }, wantErr: true},
		{name: "postgres without dsn", mutate: func(c *Config) { c.PostgresDSN = "" }, wantErr: true},
		{name: "zero pool size", mutate: func(c *Config) { c.ConnectionPoolSize = 0 }, wantErr: true},
		{name: "pool size over cap", mutate: func(c *Config) { c.ConnectionPoolSize = MaxConnectionPoolSize + 1 }, wantErr: true},
		{name: "pool size at cap", mutate: func(c *Config) { c.ConnectionPoolSize = MaxConnectionPoolSize }},
		{name: "negative retries", mutate: func(c *Config) { c.ConnectRetries = -1 }, wantErr: true},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.BcryptCost = 3 }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_AccessTokenTTL(t *testing.T) {
	cfg := Config{AccessTokenExpireMinutes: 30}
	assert.Equal(t, "30m0s", cfg.AccessTokenTTL().String())
}
