package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr          string
	LogLevel          string
	HTTPClientTimeout time.Duration // timeout for outbound HTTP calls made directly (image download, scrape)

	// Gemini API (claim extraction / validation, optional vision and grounding)
	GeminiAPIKey         string
	GeminiAPIEndpoint    string // if set, overrides default Gemini API base URL
	GeminiModelPrimary   string // e.g. gemini-2.0-flash-exp
	GeminiModelFallback  string // e.g. gemini-1.5-flash
	GeminiModelVision    string // used when VisionProvider is "gemini"
	GeminiModelGrounding string // used when SearchProvider is "gemini_grounding"

	// Search
	SearchProvider       string // google_cse or gemini_grounding
	GoogleSearchAPIKey   string
	GoogleSearchEngineID string
	MaxSearchResults     int // clamped to 1..5

	// Fact-check pipeline
	FactCheckPartialResults bool // keep going when a claim's search fails

	// Chat (summarize / Q&A), OpenAI-compatible
	GroqAPIKey  string
	GroqBaseURL string
	GroqModel   string

	// Vision (image authenticity)
	VisionProvider    string // nvidia or gemini
	NvidiaAPIKey      string
	NvidiaBaseURL     string
	NvidiaVisionModel string

	// S3/Storage (s3:// image sources)
	S3Enable    bool // use the default AWS credential chain even when no other S3_* key is set
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	// Kafka (empty brokers disables publishing / the worker)
	KafkaBrokers       []string
	KafkaConsumerGroup string
	KafkaTopicRequests string
	KafkaTopicResults  string
	KafkaTopicEvents   string

	// Scraping
	ScrapeUserAgent string
	ScrapeTimeout   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":"+getEnv("PORT", "5000")),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPClientTimeout: getEnvDuration("HTTP_CLIENT_TIMEOUT", 60*time.Second),

		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint:    getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModelPrimary:   getEnv("GEMINI_MODEL_PRIMARY", "gemini-2.0-flash-exp"),
		GeminiModelFallback:  getEnv("GEMINI_MODEL_FALLBACK", "gemini-1.5-flash"),
		GeminiModelVision:    getEnv("GEMINI_MODEL_VISION", "gemini-1.5-flash"),
		GeminiModelGrounding: getEnv("GEMINI_MODEL_GROUNDING", "gemini-2.0-flash"),

		SearchProvider:       getEnv("SEARCH_PROVIDER", "google_cse"),
		GoogleSearchAPIKey:   getEnv("GOOGLE_SEARCH_API_KEY", ""),
		GoogleSearchEngineID: getEnv("GOOGLE_SEARCH_ENGINE_ID", ""),
		MaxSearchResults:     clamp(getEnvInt("MAX_SEARCH_RESULTS", 5), 1, 5),

		FactCheckPartialResults: getEnvBool("FACTCHECK_PARTIAL_RESULTS", false),

		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:   getEnv("GROQ_MODEL", "llama3-8b-8192"),

		VisionProvider:    getEnv("VISION_PROVIDER", "nvidia"),
		NvidiaAPIKey:      getEnv("NVIDIA_API_KEY", ""),
		NvidiaBaseURL:     getEnv("NVIDIA_BASE_URL", "https://integrate.api.nvidia.com/v1"),
		NvidiaVisionModel: getEnv("NVIDIA_VISION_MODEL", "microsoft/phi-3.5-vision-instruct"),

		S3Enable:    getEnvBool("S3_ENABLED", false),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),

		KafkaBrokers:       getEnvList("KAFKA_BROKERS"),
		KafkaConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "veritas-worker"),
		KafkaTopicRequests: getEnv("KAFKA_TOPIC_REQUESTS", "veritas.factcheck.requests.v1"),
		KafkaTopicResults:  getEnv("KAFKA_TOPIC_RESULTS", "veritas.factcheck.results.v1"),
		KafkaTopicEvents:   getEnv("KAFKA_TOPIC_EVENTS", "veritas.events.v1"),

		ScrapeUserAgent: getEnv("SCRAPE_USER_AGENT", "Mozilla/5.0 (compatible; veritas/1.0)"),
		ScrapeTimeout:   getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),
	}
}

// KafkaEnabled reports whether any Kafka broker is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// S3Enabled reports whether s3:// sources can be read. s3://bucket/key names its own bucket,
// so S3_BUCKET is only the default for s3:///key.
func (c *Config) S3Enabled() bool {
	return c.S3Enable || c.S3Bucket != "" || c.S3AccessKey != "" || c.S3Endpoint != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// clamp returns v limited to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
