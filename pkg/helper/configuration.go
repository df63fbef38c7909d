package helper

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	database "github.com/yishak-cs/crm-insights/internal/database"
)

// Config is the complete service configuration
type Config struct {
	Neo4j    database.Config `yaml:"neo4j"`
	Server   ServerConfig    `yaml:"server"`
	Kafka    KafkaConfig     `yaml:"kafka"`
	Import   ImportConfig    `yaml:"import"`
	LogLevel string          `yaml:"log_level"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	LeadRankLimit int    `yaml:"lead_rank_limit"`
}

// KafkaConfig configures insight event publishing. No brokers disables it.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	InsightsTopic string   `yaml:"insights_topic"`
}

type ImportConfig struct {
	BaseURL string `yaml:"base_url"`
	OnStart bool   `yaml:"on_start"`
}

// Defaults returns the configuration used when nothing is overridden
func Defaults() Config {
	return Config{
		Neo4j: database.Config{
			Username: "neo4j",
			Database: "neo4j",
		},
		Server: ServerConfig{
			Port:          "8080",
			LeadRankLimit: 25,
		},
		Kafka: KafkaConfig{
			InsightsTopic: "crm-insights",
		},
		LogLevel: "info",
	}
}

// LoadConfig builds the configuration from defaults, then the YAML file named
// by CONFIG_FILE (config.yaml if unset, skipped when absent), then the environment.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(getEnvOrDefault("CONFIG_FILE", "config.yaml"))
}

// LoadConfigFrom is LoadConfig with an explicit file path
func LoadConfigFrom(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Neo4j.URI = getEnvOrDefault("NEO4J_URI", cfg.Neo4j.URI)
	cfg.Neo4j.Username = getEnvOrDefault("NEO4J_USERNAME", cfg.Neo4j.Username)
	cfg.Neo4j.Password = getEnvOrDefault("NEO4J_PASSWORD", cfg.Neo4j.Password)
	cfg.Neo4j.Database = getEnvOrDefault("NEO4J_DATABASE", cfg.Neo4j.Database)

	cfg.Server.Port = getEnvOrDefault("APP_PORT", cfg.Server.Port)
	cfg.Server.LeadRankLimit = getEnvInt("LEAD_RANK_LIMIT", cfg.Server.LeadRankLimit)

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	cfg.Kafka.InsightsTopic = getEnvOrDefault("KAFKA_INSIGHTS_TOPIC", cfg.Kafka.InsightsTopic)

	cfg.Import.BaseURL = getEnvOrDefault("IMPORT_BASE_URL", cfg.Import.BaseURL)
	cfg.Import.OnStart = getEnvBool("IMPORT_ON_START", cfg.Import.OnStart)

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
