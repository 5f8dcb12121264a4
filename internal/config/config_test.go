package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BLOG_JWT_KEY", "unit-test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "memory", cfg.Database.Backend)
	assert.Equal(t, "blog-api", cfg.JWT.Issuer)
	assert.Equal(t, "blog-clients", cfg.JWT.Audience)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, 120, cfg.Security.RateLimitRPM)
	assert.Contains(t, cfg.Security.CORSAllowedOrigins, "http://localhost:3000")
}

func TestLoad_RequiresSigningKey(t *testing.T) {
	t.Setenv("BLOG_JWT_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BLOG_JWT_KEY")
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWT:      JWTConfig{Key: "k", ExpireMinutes: 60},
		Database: DBConfig{Backend: "memory"},
	}
	assert.NoError(t, valid.validate())

	badTTL := valid
	badTTL.JWT.ExpireMinutes = 0
	assert.Error(t, badTTL.validate())

	pgNoDSN := valid
	pgNoDSN.Database.Backend = "postgres"
	assert.Error(t, pgNoDSN.validate())

	pgWithDSN := pgNoDSN
	pgWithDSN.Database.PostgresDSN = "postgres://localhost/blog"
	assert.NoError(t, pgWithDSN.validate())

	unknown := valid
	unknown.Database.Backend = "oracle"
	assert.Error(t, unknown.validate())
}
