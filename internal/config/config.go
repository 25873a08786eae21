package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Ai        AIConfig
	Sessions  SessionConfig
	Retention RetentionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	JwtSecret string
}

type AIConfig struct {
	LLMProvider        string // "gemini", "ollama", "openai", "anthropic"
	LLMModel           string
	TranscriptionModel string // gemini model used for audio
	GeminiAPIKey       string
	GeminiBaseURL      string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	AnthropicAPIKey    string
	OllamaBaseURL      string
	RequestTimeout     time.Duration
}

type SessionConfig struct {
	ListTTL         time.Duration
	MaxCaptureBytes int
	MaxUploadBytes  int
}

type RetentionConfig struct {
	Enabled  bool
	Interval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:        getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:           getEnv("LLM_MODEL", "gemini-2.5-flash"),
			TranscriptionModel: getEnv("TRANSCRIPTION_MODEL", "gemini-2.5-flash"),
			GeminiAPIKey:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RequestTimeout:     getEnvAsDuration("AI_REQUEST_TIMEOUT", 120*time.Second),
		},
		Sessions: SessionConfig{
			ListTTL:         getEnvAsDuration("SESSION_LIST_TTL", time.Hour),
			MaxCaptureBytes: getEnvAsInt("MAX_CAPTURE_BYTES", 50<<20),
			MaxUploadBytes:  getEnvAsInt("MAX_UPLOAD_BYTES", 100<<20),
		},
		Retention: RetentionConfig{
			Enabled:  getEnvAsBool("RETENTION_ENABLED", true),
			Interval: getEnvAsDuration("RETENTION_INTERVAL", 6*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
