package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/billing-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Storage       StorageConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Clients       ClientsConfig
	Notifications NotificationsConfig
	Email         EmailConfig
	WhatsApp      WhatsAppConfig
	Secrets       SecretsConfig
	Logging       LoggingConfig
	Server        ServerConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// StorageConfig selects where collection documents are persisted.
// Mode is one of "local", "azure" or "database".
type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

type AuthConfig struct {
	JWTSecret         string
	TokenTTLHours     int
	Issuer            string
	ApiKey            string
	AllowRegistration bool
}

// ClientsConfig controls client validation rules
type ClientsConfig struct {
	// CaseInsensitiveEmail switches the duplicate-email check from exact match to case-folded match
	CaseInsensitiveEmail bool
}

// NotificationsConfig controls the reminder engine and notification retention
type NotificationsConfig struct {
	Enabled            bool
	RetentionDays      int
	OwnerEmail         string
	OwnerWhatsApp      string
	DeadlineWindowDays []int
	DeadlineCron       string
	OverdueCron        string
	InvoiceCron        string
	CleanupCron        string
	JobTimeout         int
}

type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type WhatsAppConfig struct {
	Enabled       bool
	APIURL        string
	PhoneNumberID string
	AccessToken   string
	Timeout       int
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	EnableMetrics  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	// LoginRequestsPerMinute caps register and login attempts per IP
	LoginRequestsPerMinute int
	WhitelistIPs           []string
	WhitelistPaths         []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TokenTTL returns the lifetime of issued session tokens
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// Retention returns how long notifications are kept before the cleanup sweep purges them
func (n *NotificationsConfig) Retention() time.Duration {
	return time.Duration(n.RetentionDays) * 24 * time.Hour
}

// JobTimeoutDuration returns the maximum run time of a single reminder sweep
func (n *NotificationsConfig) JobTimeoutDuration() time.Duration {
	return time.Duration(n.JobTimeout) * time.Second
}

// TimeoutDuration returns the HTTP timeout for WhatsApp API calls
func (w *WhatsAppConfig) TimeoutDuration() time.Duration {
	return time.Duration(w.Timeout) * time.Second
}

// Load loads configuration from file and environment variables.
// It does not fetch secrets from vault; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Auth.ApiKey == "" {
		cfg.Auth.ApiKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// Key Vault is used when USE_AZURE_KEY_VAULT=true and the environment is staging or production;
// otherwise secrets come from environment variables.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	applied := provider.Apply(ctx, []secrets.Binding{
		{SecretName: "jwt-secret", EnvName: "JWT_SECRET", Target: &cfg.Auth.JWTSecret},
		{SecretName: "admin-api-key", EnvName: "ADMIN_API_KEY", Target: &cfg.Auth.ApiKey},
		{SecretName: "smtp-password", EnvName: "EMAIL_PASSWORD", Target: &cfg.Email.Password},
		{SecretName: "whatsapp-access-token", EnvName: "WHATSAPP_ACCESSTOKEN", Target: &cfg.WhatsApp.AccessToken},
		{SecretName: "storage-connection-string", EnvName: "STORAGE_CLOUDCONNECTIONSTRING", Target: &cfg.Storage.CloudConnectionString},
		{SecretName: "database-password", EnvName: "DATABASE_PASSWORD", Target: &cfg.Database.Password},
	})

	logger.Info("Secrets loaded from vault", zap.Int("applied", applied))
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Straye Billing API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./data")
	v.SetDefault("storage.cloudContainer", "billing-data")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "billing")
	v.SetDefault("database.user", "billing_user")
	v.SetDefault("database.password", "billing_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "./data/billing.db")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("auth.tokenTTLHours", 24)
	v.SetDefault("auth.issuer", "straye-billing-api")
	v.SetDefault("auth.allowRegistration", true)

	v.SetDefault("clients.caseInsensitiveEmail", false)

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.retentionDays", 30)
	v.SetDefault("notifications.deadlineWindowDays", []int{1, 3, 7})
	// Six-field expressions (seconds first), see jobs.NewScheduler
	v.SetDefault("notifications.deadlineCron", "0 0 9 * * *")
	v.SetDefault("notifications.overdueCron", "0 0 9 * * MON")
	v.SetDefault("notifications.invoiceCron", "0 0 9 1 * *")
	v.SetDefault("notifications.cleanupCron", "0 0 2 * * *")
	v.SetDefault("notifications.jobTimeout", 300)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.port", 587)

	v.SetDefault("whatsapp.enabled", false)
	v.SetDefault("whatsapp.apiURL", "https://graph.facebook.com/v19.0")
	v.SetDefault("whatsapp.timeout", 10)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.enableMetrics", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.loginRequestsPerMinute", 10)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/ready", "/metrics"})
}
