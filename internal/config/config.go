package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Mail provider names accepted in mail.provider
const (
	ProviderSMTP  = "smtp"
	ProviderZoho  = "zoho"
	ProviderGmail = "gmail"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Business  BusinessConfig  `mapstructure:"business"`
	Mail      MailConfig      `mapstructure:"mail"`
	Events    EventsConfig    `mapstructure:"events"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// MaxBodyBytes caps the size of a submission body
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig holds Redis configuration. Redis is optional and only backs
// the rate limiter; when disabled an in-process limiter is used.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitConfig holds rate limiting configuration for the submission routes.
// Forwarding headers are honoured only when the peer address falls inside
// TrustedProxies (CIDRs or bare IPs).
type RateLimitConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Limit          int           `mapstructure:"limit"`
	Window         time.Duration `mapstructure:"window"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
}

// ParseTrustedProxies converts entries such as "10.0.0.0/8" or "127.0.0.1"
// into prefixes. A bare address becomes a single-host prefix.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// CORSConfig holds the origin allow-list. "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// BusinessConfig describes the business receiving submissions
type BusinessConfig struct {
	// Email is the inbox every notification is sent to
	Email   string `mapstructure:"email"`
	Name    string `mapstructure:"name"`
	Phone   string `mapstructure:"phone"`
	Website string `mapstructure:"website"`
}

// MailConfig selects and configures the outbound mail transport
type MailConfig struct {
	// Provider is one of "smtp", "zoho", "gmail"
	Provider string `mapstructure:"provider"`
	// SenderAddress is the "From" address. Defaults to business.email.
	SenderAddress string      `mapstructure:"sender_address"`
	SenderName    string      `mapstructure:"sender_name"`
	SMTP          SMTPConfig  `mapstructure:"smtp"`
	Zoho          ZohoConfig  `mapstructure:"zoho"`
	Gmail         GmailConfig `mapstructure:"gmail"`
}

// SMTPConfig holds static SMTP relay credentials
type SMTPConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// ZohoConfig holds Zoho Mail REST API configuration
type ZohoConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
	// TokenURL is the OAuth2 token endpoint used for the refresh exchange
	TokenURL string `mapstructure:"token_url"`
	// APIBase is the accounts endpoint; messages are posted to {APIBase}/{accountId}/messages
	APIBase string        `mapstructure:"api_base"`
	Timeout time.Duration `mapstructure:"timeout"`
	// LegacySilentSendFailure logs a non-200 final send instead of failing the request
	LegacySilentSendFailure bool `mapstructure:"legacy_silent_send_failure"`
}

// GmailConfig holds Gmail API configuration
type GmailConfig struct {
	// CredentialsJSON is the service account credentials JSON content
	CredentialsJSON string `mapstructure:"credentials_json"`
	// ClientID for OAuth2 token-based auth (alternative to service account)
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RefreshToken string `mapstructure:"refresh_token"`
}

// EventsConfig holds submission event publishing configuration
type EventsConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	RequireAcks  int           `mapstructure:"require_acks"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// legacyEnv maps config keys to the variable names used by earlier deployments
var legacyEnv = map[string]string{
	"business.email":          "BUSINESS_EMAIL",
	"mail.smtp.username":      "EMAIL_USER",
	"mail.smtp.password":      "EMAIL_PASS",
	"mail.zoho.client_id":     "ZOHO_CLIENT_ID",
	"mail.zoho.client_secret": "ZOHO_CLIENT_SECRET",
	"mail.zoho.refresh_token": "ZOHO_REFRESH_TOKEN",
}

const envPrefix = "EVENTMAIL"

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/eventmail")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDerived()

	return &cfg, nil
}

// applyDerived fills values that default to other settings
func (c *Config) applyDerived() {
	if c.Mail.SenderAddress == "" {
		c.Mail.SenderAddress = c.Business.Email
	}
	if c.Mail.SenderName == "" {
		c.Mail.SenderName = c.Business.Name
	}
	c.Mail.Provider = strings.ToLower(strings.TrimSpace(c.Mail.Provider))
}

// Validate checks that the selected mail provider has what it needs
func (c *Config) Validate() error {
	var errs []error

	if c.Business.Email == "" {
		errs = append(errs, errors.New("business.email is required"))
	}

	switch c.Mail.Provider {
	case ProviderSMTP:
		if c.Mail.SMTP.Host == "" {
			errs = append(errs, errors.New("mail.smtp.host is required"))
		}
		if c.Mail.SMTP.Port <= 0 {
			errs = append(errs, errors.New("mail.smtp.port must be positive"))
		}
	case ProviderZoho:
		if c.Mail.Zoho.ClientID == "" || c.Mail.Zoho.ClientSecret == "" || c.Mail.Zoho.RefreshToken == "" {
			errs = append(errs, errors.New("mail.zoho.client_id, client_secret and refresh_token are required"))
		}
		if c.Mail.Zoho.TokenURL == "" || c.Mail.Zoho.APIBase == "" {
			errs = append(errs, errors.New("mail.zoho.token_url and api_base are required"))
		}
	case ProviderGmail:
		hasToken := c.Mail.Gmail.ClientID != "" && c.Mail.Gmail.ClientSecret != "" && c.Mail.Gmail.RefreshToken != ""
		if c.Mail.Gmail.CredentialsJSON == "" && !hasToken {
			errs = append(errs, errors.New("mail.gmail requires credentials_json or client_id/client_secret/refresh_token"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail.provider %q", c.Mail.Provider))
	}

	if c.Events.Enabled {
		if len(c.Events.Brokers) == 0 {
			errs = append(errs, errors.New("events.brokers is required when events are enabled"))
		}
		if c.Events.Topic == "" {
			errs = append(errs, errors.New("events.topic is required when events are enabled"))
		}
	}

	if _, err := ParseTrustedProxies(c.RateLimit.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("rate_limit.trusted_proxies: %w", err))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Rate limit defaults
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.limit", 10)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.trusted_proxies", []string{})

	v.SetDefault("cors.allowed_origins", []string{"*"})

	// Business defaults
	v.SetDefault("business.email", "")
	v.SetDefault("business.name", "Bristo Event Caterers")
	v.SetDefault("business.phone", "+254 710 302 253")
	v.SetDefault("business.website", "https://www.bristoevents.co.ke")

	// Mail defaults
	v.SetDefault("mail.provider", ProviderSMTP)
	v.SetDefault("mail.sender_address", "")
	v.SetDefault("mail.sender_name", "")

	v.SetDefault("mail.smtp.host", "smtp.gmail.com")
	v.SetDefault("mail.smtp.port", 587)
	v.SetDefault("mail.smtp.username", "")
	v.SetDefault("mail.smtp.password", "")
	v.SetDefault("mail.smtp.insecure_skip_verify", false)

	v.SetDefault("mail.zoho.client_id", "")
	v.SetDefault("mail.zoho.client_secret", "")
	v.SetDefault("mail.zoho.refresh_token", "")
	v.SetDefault("mail.zoho.token_url", "https://accounts.zoho.com/oauth/v2/token")
	v.SetDefault("mail.zoho.api_base", "https://mail.zoho.com/api/accounts")
	v.SetDefault("mail.zoho.timeout", "15s")
	v.SetDefault("mail.zoho.legacy_silent_send_failure", false)

	v.SetDefault("mail.gmail.credentials_json", "")
	v.SetDefault("mail.gmail.client_id", "")
	v.SetDefault("mail.gmail.client_secret", "")
	v.SetDefault("mail.gmail.refresh_token", "")

	// Events defaults
	v.SetDefault("events.enabled", false)
	v.SetDefault("events.brokers", []string{})
	v.SetDefault("events.topic", "submissions")
	v.SetDefault("events.require_acks", -1)
	v.SetDefault("events.batch_timeout", "50ms")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
