package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.ListenAddr)
	assert.Equal(t, 30*time.Minute, cfg.JWT.Expires)
	assert.Equal(t, "meowv", cfg.JWT.DefaultSubject)
	assert.Equal(t, "阿星Plus", cfg.JWT.DefaultName)
	assert.Equal(t, "123@meowv.com", cfg.JWT.DefaultEmail)
	assert.Equal(t, StateBackendRedis, cfg.Authorize.StateBackend)
	assert.Equal(t, 10*time.Minute, cfg.Authorize.StateTTL)
	assert.False(t, cfg.Authorize.GitHub.Enabled())
	assert.True(t, cfg.Cleanup.Enabled)
	assert.Equal(t, 30, cfg.Cleanup.RetentionDays)
}

func TestLoadProviderSections(t *testing.T) {
	t.Setenv("OAUTH_GITHUB_CLIENT_ID", "gh-id")
	t.Setenv("OAUTH_GITHUB_CLIENT_SECRET", "gh-secret")
	t.Setenv("OAUTH_GITHUB_SCOPES", "read:user, user:email ,")
	t.Setenv("OAUTH_GITEE_CLIENT_ID", "gitee-id")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://blog.meowv.com, ,https://admin.meowv.com")
	t.Setenv("JWT_EXPIRES", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Authorize.GitHub.Enabled())
	assert.Equal(t, []string{"read:user", "user:email"}, cfg.Authorize.GitHub.Scopes)
	assert.False(t, cfg.Authorize.Gitee.Enabled(), "gitee has no secret")
	assert.Equal(t, []string{"https://blog.meowv.com", "https://admin.meowv.com"}, cfg.App.CORSAllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWT.Expires)
}

func TestLoadJWTExpires(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"30", 30 * time.Minute},
		{" 45 ", 45 * time.Minute},
		{"90s", 90 * time.Second},
		{"2h", 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("JWT_EXPIRES", tt.value)
			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.JWT.Expires)
		})
	}
}

func TestLoadJWTExpiresRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_EXPIRES", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWT:       JWTConfig{Issuer: "meowv", Audience: "meowv_blog", SigningKey: "k"},
		Authorize: AuthorizeConfig{StateBackend: StateBackendMemory},
	}
	assert.NoError(t, valid.Validate())

	missing := valid
	missing.JWT = JWTConfig{Issuer: "meowv"}
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_AUDIENCE")
	assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")

	badBackend := valid
	badBackend.Authorize.StateBackend = "etcd"
	assert.Error(t, badBackend.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "blog", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/blog?sslmode=disable", c.DSN())

	c.SocketDir = "/var/run/postgresql"
	assert.Equal(t, "host=/var/run/postgresql user=u password=p dbname=blog sslmode=disable", c.DSN())
}
