package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// EmailProvider identifies which delivery backend was configured at startup.
type EmailProvider string

const (
	ProviderBrevo  EmailProvider = "brevo"
	ProviderResend EmailProvider = "resend"
	ProviderSMTP   EmailProvider = "smtp"
	ProviderNone   EmailProvider = "none"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	GoEnv       string
	JWTSecret   string
	LogLevel    string

	// Company display fields used in generated emails and invoice PDFs
	CompanyName     string
	CompanyAddress  string
	SupportEmail    string
	SupportPhone    string
	DefaultDialCode string

	// Invoice artifacts
	InvoiceDir     string
	InvoiceBaseURL string

	// Object storage (optional; local disk is always used)
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Email delivery. Provider is resolved exactly once at load time
	// from which credentials are present, in priority order
	// Brevo > Resend > SMTP. Senders receive the resolved value and
	// never re-inspect the environment.
	EmailProvider EmailProvider
	EmailFrom     string
	BrevoAPIKey   string
	ResendAPIKey  string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			// In hosted environments the variables are set directly,
			// so it's okay if .env files don't exist
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		GoEnv:       getEnv("GO_ENV", "development"),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		CompanyName:     getEnv("COMPANY_NAME", "Summitworks Training"),
		CompanyAddress:  getEnv("COMPANY_ADDRESS", ""),
		SupportEmail:    getEnv("SUPPORT_EMAIL", "support@summitworks.example"),
		SupportPhone:    getEnv("SUPPORT_PHONE", ""),
		DefaultDialCode: getEnv("DEFAULT_DIAL_CODE", "+44"),

		InvoiceDir:     getEnv("INVOICE_DIR", "./invoices"),
		InvoiceBaseURL: getEnv("INVOICE_BASE_URL", ""),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		EmailFrom:    getEnv("EMAIL_FROM", "no-reply@summitworks.example"),
		BrevoAPIKey:  getEnv("BREVO_API_KEY", ""),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
	}
	config.EmailProvider = resolveEmailProvider(config)

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configInstance = config
	return config, nil
}

// resolveEmailProvider picks the delivery backend from the credentials
// present, in a fixed priority order.
func resolveEmailProvider(c *Config) EmailProvider {
	switch {
	case c.BrevoAPIKey != "":
		return ProviderBrevo
	case c.ResendAPIKey != "":
		return ProviderResend
	case c.SMTPHost != "":
		return ProviderSMTP
	default:
		return ProviderNone
	}
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// GetConfig returns the loaded configuration instance
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(c *Config) {
	configInstance = c
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return defaultValue
	}
	return n
}
