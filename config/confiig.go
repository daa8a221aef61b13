package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"reachround/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type OAuthConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

type LLMConfig struct {
	Provider    string        `json:"provider"`
	APIKey      string        `json:"-"`
	Model       string        `json:"model"`
	BaseURL     string        `json:"base_url"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
}

type DispatchConfig struct {
	MinDelay time.Duration `json:"min_delay"`
	MaxDelay time.Duration `json:"max_delay"`
}

type Config struct {
	Environment            string         `json:"environment"`
	ServerPort             string         `json:"server_port"`
	FrontendURL            string         `json:"frontend_url"`
	CORSOrigins            []string       `json:"cors_origins"`
	Google                 OAuthConfig    `json:"google"`
	EncryptionKey          string         `json:"-"`
	JWTSecret              string         `json:"-"`
	DBHost                 string         `json:"db_host"`
	DBPort                 string         `json:"db_port"`
	DBUser                 string         `json:"db_user"`
	DBPassword             string         `json:"-"`
	DBName                 string         `json:"db_name"`
	DBSSLMode              string         `json:"db_ssl_mode"`
	DBMaxIdleConns         int            `json:"db_max_idle_conns"`
	DBMaxOpenConns         int            `json:"db_max_open_conns"`
	Redis                  RedisConfig    `json:"redis"`
	LLM                    LLMConfig      `json:"llm"`
	Dispatch               DispatchConfig `json:"dispatch"`
	RateLimitAIPerMinute   int            `json:"rate_limit_ai_per_minute"`
	ResearchStaleAfter     time.Duration  `json:"research_stale_after"`
	ResearchReaperInterval time.Duration  `json:"research_reaper_interval"`
	SentryDSN              string         `json:"-"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	encryptionKey := getEnv("ENCRYPTION_KEY", "")

	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "5000"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:5000/auth/gmail/callback"),
		},
		EncryptionKey:  encryptionKey,
		JWTSecret:      getEnv("JWT_SECRET", encryptionKey),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "reachround"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", ""),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Temperature: float32(getEnvAsFloat("LLM_TEMPERATURE", 0.7)),
			MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 4096),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 2*time.Minute),
		},
		Dispatch: DispatchConfig{
			MinDelay: getEnvAsDuration("DISPATCH_MIN_DELAY", 2*time.Second),
			MaxDelay: getEnvAsDuration("DISPATCH_MAX_DELAY", 5*time.Second),
		},
		RateLimitAIPerMinute:   getEnvAsInt("RATE_LIMIT_AI_PER_MINUTE", 20),
		ResearchStaleAfter:     getEnvAsDuration("RESEARCH_STALE_AFTER", 10*time.Minute),
		ResearchReaperInterval: getEnvAsDuration("RESEARCH_REAPER_INTERVAL", time.Minute),
		SentryDSN:              getEnv("SENTRY_DSN", ""),
	}

	return AppConfig.Validate()
}

// Validate checks required keys and cross-field constraints.
func (c Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	switch len(c.EncryptionKey) {
	case 16, 24, 32:
	default:
		return fmt.Errorf("ENCRYPTION_KEY must be 16, 24 or 32 bytes, got %d", len(c.EncryptionKey))
	}
	switch c.LLM.Provider {
	case "openai", "ollama", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLM.Provider)
	}
	if c.Dispatch.MaxDelay < c.Dispatch.MinDelay {
		return fmt.Errorf("DISPATCH_MAX_DELAY must not be lower than DISPATCH_MIN_DELAY")
	}
	if c.Environment == "production" {
		if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
			return fmt.Errorf("Google OAuth credentials are required in production")
		}
		if c.LLM.APIKey == "" && c.LLM.Provider != "ollama" {
			return fmt.Errorf("LLM_API_KEY is required in production")
		}
	}

	logConfig(c)
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("✅ Successfully connected to the database")
	log.Println("🔄 Starting database migration...")
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("✅ Database migration completed")
	return nil
}

// MigrateDB creates or updates every table the service owns.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Campaign{},
		&models.Investor{},
		&models.Email{},
		&models.EmailVersion{},
		&models.GmailToken{},
	)
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("⚠️ %s=%q is not a duration, using %s", key, valueStr, fallback)
		return fallback
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig(c Config) {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", c.Environment)
	log.Printf("Server Port: %s", c.ServerPort)
	log.Printf("Database: %s@%s:%s/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName)
	log.Printf("Gmail OAuth configured: %t", c.Google.ClientID != "")
	log.Printf("LLM provider: %s (model %q)", c.LLM.Provider, c.LLM.Model)
	log.Printf("Redis rate limit storage: %t", c.Redis.Enabled)
}
