package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Catalog holds the optional Elasticsearch settings. An empty address disables the catalog.
type Catalog struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Enabled reports whether a catalog address was configured.
func (c Catalog) Enabled() bool { return c.ElasticsearchAddr != "" }

// Broker holds the optional Kafka settings used to publish marketplace snapshots.
type Broker struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// Enabled reports whether at least one broker was configured.
func (b Broker) Enabled() bool { return len(b.KafkaBrokers) > 0 }

// Server describes the chat API.
type Server struct {
	Catalog
	BindAddr         string
	SpecsPath        string
	MarketplacePaths []string
	AIProvider       string
	GoogleAPIKey     string
	Model            string
	HistoryLimit     int
	MaxOutputTokens  int
	ChatTimeout      time.Duration
}

// LoadServer builds a Server config from environment variables.
func LoadServer() (*Server, error) {
	c := &Server{
		Catalog:          loadCatalog(),
		BindAddr:         getEnv("LAPTOPSPECS_BIND_ADDR", "0.0.0.0:8000"),
		SpecsPath:        getEnv("LAPTOPSPECS_SPECS_FILE", "laptop_specs_normalized.json"),
		MarketplacePaths: splitAndTrim(getEnv("LAPTOPSPECS_MARKETPLACE_FILES", "laptops_output.json,laptop_data.json")),
		AIProvider:       strings.ToLower(getEnv("LAPTOPSPECS_AI", "gemini")),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		Model:            getEnv("LAPTOPSPECS_MODEL", "gemini-2.5-flash"),
		HistoryLimit:     getInt("LAPTOPSPECS_HISTORY_LIMIT", 10),
		MaxOutputTokens:  getInt("LAPTOPSPECS_MAX_TOKENS", 2000),
		ChatTimeout:      getDuration("LAPTOPSPECS_CHAT_TIMEOUT", "60s"),
	}

	switch c.AIProvider {
	case "gemini":
		if c.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY not set")
		}
	case "off":
	default:
		return nil, fmt.Errorf("LAPTOPSPECS_AI must be gemini or off, got %q", c.AIProvider)
	}
	if c.HistoryLimit <= 0 {
		return nil, fmt.Errorf("LAPTOPSPECS_HISTORY_LIMIT must be positive")
	}
	if c.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("LAPTOPSPECS_MAX_TOKENS must be positive")
	}
	if c.ChatTimeout <= 0 {
		return nil, fmt.Errorf("LAPTOPSPECS_CHAT_TIMEOUT must be positive")
	}

	return c, nil
}

// LoadCatalog builds the Catalog config; the index command requires an address.
func LoadCatalog() (*Catalog, error) {
	c := loadCatalog()
	if !c.Enabled() {
		return nil, fmt.Errorf("ELASTICSEARCH_ADDR must be set")
	}
	return &c, nil
}

// LoadBroker builds the Broker config. No brokers means publishing is disabled.
func LoadBroker() (*Broker, error) {
	b := &Broker{
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "laptop_listings"),
	}
	if b.Enabled() && b.KafkaTopic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is")
	}
	return b, nil
}

func loadCatalog() Catalog {
	return Catalog{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", ""),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "laptops"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
