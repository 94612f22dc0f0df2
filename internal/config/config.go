package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the environment leaves a setting empty
const (
	DefaultPort           = "8080"
	DefaultSheetName      = "PresenceMatic Orders"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultSweepInterval  = 5 * time.Minute
	DefaultPersistTimeout = 10 * time.Second
)

// Config holds everything the bot reads from the environment
type Config struct {
	Port                     string
	Environment              string
	DisableWebhookValidation bool
	PublicBaseURL            string
	AdminToken               string

	// Google Sheets
	GoogleCredsJSON string
	SheetName       string
	SpreadsheetID   string

	// Sessions
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	PersistTimeout time.Duration
	RedisAddr      string
	RedisPassword  string

	// Order mirror database
	DatabaseURL            string
	DBHost                 string
	DBUser                 string
	DBPass                 string
	DBName                 string
	InstanceConnectionName string

	// Twilio
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
	StaffWhatsAppTo    string
}

// LoadDotEnv loads a .env file for local development. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "environments/.env.development"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			log.Printf("🔍 Loaded environment from %s", p)
			return
		}
	}
	log.Println("⚠️  No .env file found - checking environment variables")
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                     getEnv("PORT", DefaultPort),
		Environment:              getEnv("ENVIRONMENT", "production"),
		DisableWebhookValidation: getBool("DISABLE_WEBHOOK_VALIDATION"),
		PublicBaseURL:            strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		AdminToken:               os.Getenv("ADMIN_TOKEN"),

		GoogleCredsJSON: os.Getenv("GOOGLE_CREDS_JSON"),
		SheetName:       getEnv("SHEET_NAME", DefaultSheetName),
		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),

		SessionTTL:     getDuration("SESSION_TTL", DefaultSessionTTL),
		SweepInterval:  getDuration("SESSION_SWEEP_INTERVAL", DefaultSweepInterval),
		PersistTimeout: getDuration("PERSIST_TIMEOUT", DefaultPersistTimeout),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),

		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DBHost:                 os.Getenv("DB_HOST"),
		DBUser:                 getEnv("DB_USER", "postgres"),
		DBPass:                 os.Getenv("DB_PASS"),
		DBName:                 os.Getenv("DB_NAME"),
		InstanceConnectionName: os.Getenv("INSTANCE_CONNECTION_NAME"),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
		StaffWhatsAppTo:    os.Getenv("STAFF_WHATSAPP_TO"),
	}
}

// IsDevelopment reports whether the bot runs locally
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ValidateWebhooks reports whether Twilio signatures must be checked
func (c *Config) ValidateWebhooks() bool {
	return !c.IsDevelopment() && !c.DisableWebhookValidation
}

// DatabaseConfigured reports whether an order mirror database was configured
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" || c.DBName != ""
}

// TwilioConfigured reports whether outbound Twilio messages can be sent
func (c *Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}

// DatabaseDSN builds the Postgres connection string
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	// Cloud Run with Cloud SQL connects over a unix socket
	if c.InstanceConnectionName != "" {
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			c.InstanceConnectionName, c.DBUser, c.DBPass, c.DBName)
	}

	host := c.DBHost
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
		host, c.DBUser, c.DBPass, c.DBName)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "true" || v == "1" || v == "yes"
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		log.Printf("⚠️  Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
