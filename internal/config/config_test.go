package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Equal(t, ProviderSMTP, cfg.Mail.Provider)
	assert.Equal(t, "smtp.gmail.com", cfg.Mail.SMTP.Host)
	assert.Equal(t, 587, cfg.Mail.SMTP.Port)
	assert.Equal(t, "https://accounts.zoho.com/oauth/v2/token", cfg.Mail.Zoho.TokenURL)
	assert.Equal(t, 15*time.Second, cfg.Mail.Zoho.Timeout)
	assert.False(t, cfg.Mail.Zoho.LegacySilentSendFailure)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.RateLimit.TrustedProxies, "no proxy is trusted by default")
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "Bristo Event Caterers", cfg.Mail.SenderName, "sender name falls back to business name")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EVENTMAIL_SERVER_PORT", "9090")
	t.Setenv("EVENTMAIL_MAIL_PROVIDER", " Zoho ")
	t.Setenv("EVENTMAIL_BUSINESS_EMAIL", "inbox@example.com")
	t.Setenv("EVENTMAIL_MAIL_ZOHO_LEGACY_SILENT_SEND_FAILURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ProviderZoho, cfg.Mail.Provider)
	assert.Equal(t, "inbox@example.com", cfg.Business.Email)
	assert.Equal(t, "inbox@example.com", cfg.Mail.SenderAddress, "sender address falls back to business email")
	assert.True(t, cfg.Mail.Zoho.LegacySilentSendFailure)
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("EMAIL_USER", "relay@example.com")
	t.Setenv("EMAIL_PASS", "app-password")
	t.Setenv("ZOHO_CLIENT_ID", "cid")
	t.Setenv("ZOHO_CLIENT_SECRET", "csecret")
	t.Setenv("ZOHO_REFRESH_TOKEN", "rtoken")
	t.Setenv("BUSINESS_EMAIL", "legacy@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "relay@example.com", cfg.Mail.SMTP.Username)
	assert.Equal(t, "app-password", cfg.Mail.SMTP.Password)
	assert.Equal(t, "cid", cfg.Mail.Zoho.ClientID)
	assert.Equal(t, "csecret", cfg.Mail.Zoho.ClientSecret)
	assert.Equal(t, "rtoken", cfg.Mail.Zoho.RefreshToken)
	assert.Equal(t, "legacy@example.com", cfg.Business.Email)
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	t.Setenv("EMAIL_USER", "legacy@example.com")
	t.Setenv("EVENTMAIL_MAIL_SMTP_USERNAME", "new@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", cfg.Mail.SMTP.Username)
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			Business: BusinessConfig{Email: "inbox@example.com"},
			Mail: MailConfig{
				Provider: ProviderSMTP,
				SMTP:     SMTPConfig{Host: "smtp.example.com", Port: 587},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid smtp",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing business email",
			mutate:  func(c *Config) { c.Business.Email = "" },
			wantErr: "business.email is required",
		},
		{
			name:    "smtp without host",
			mutate:  func(c *Config) { c.Mail.SMTP.Host = "" },
			wantErr: "mail.smtp.host is required",
		},
		{
			name: "zoho without credentials",
			mutate: func(c *Config) {
				c.Mail.Provider = ProviderZoho
				c.Mail.Zoho.TokenURL = "https://accounts.example.com/token"
				c.Mail.Zoho.APIBase = "https://mail.example.com/api/accounts"
			},
			wantErr: "client_id, client_secret and refresh_token are required",
		},
		{
			name: "zoho complete",
			mutate: func(c *Config) {
				c.Mail.Provider = ProviderZoho
				c.Mail.Zoho = ZohoConfig{
					ClientID:     "id",
					ClientSecret: "secret",
					RefreshToken: "refresh",
					TokenURL:     "https://accounts.example.com/token",
					APIBase:      "https://mail.example.com/api/accounts",
				}
			},
		},
		{
			name:    "gmail without credentials",
			mutate:  func(c *Config) { c.Mail.Provider = ProviderGmail },
			wantErr: "mail.gmail requires",
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Mail.Provider = "carrier-pigeon" },
			wantErr: `unknown mail.provider "carrier-pigeon"`,
		},
		{
			name: "events without brokers",
			mutate: func(c *Config) {
				c.Events.Enabled = true
				c.Events.Topic = "submissions"
			},
			wantErr: "events.brokers is required",
		},
		{
			name:   "trusted proxies",
			mutate: func(c *Config) { c.RateLimit.TrustedProxies = []string{"10.0.0.0/8", "127.0.0.1", "::1"} },
		},
		{
			name:    "malformed trusted proxy",
			mutate:  func(c *Config) { c.RateLimit.TrustedProxies = []string{"10.0.0.0/99"} },
			wantErr: "rate_limit.trusted_proxies",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{" 10.1.2.3/8 ", "192.0.2.10", "", "::1"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)

	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.0.2.10/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.ErrorContains(t, err, `invalid trusted proxy "proxy.internal"`)
}
