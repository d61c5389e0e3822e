package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq" // PostgreSQL driver
	"gopkg.in/yaml.v3"

	"github.com/zombar/hoaxcheck"
	"github.com/zombar/hoaxcheck/api"
	"github.com/zombar/hoaxcheck/db"
)

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// fileConfig is the optional YAML configuration file. Every field falls back
// to the built-in defaults when absent; environment variables and flags
// override the file.
type fileConfig struct {
	Domains            []string `yaml:"domains"`
	HTTPTimeoutSec     int      `yaml:"http_timeout_seconds"`
	FetchAttempts      uint64   `yaml:"fetch_attempts"`
	PerHostConcurrency int      `yaml:"per_host_concurrency"`
	MaxBodyBytes       int64    `yaml:"max_body_bytes"`
	MinTextChars       int      `yaml:"min_text_chars"`
	CacheTTLSec        int      `yaml:"cache_ttl_seconds"`
	CacheMaxEntries    int      `yaml:"cache_max_entries"`
	ClassifierEndpoint string   `yaml:"classifier_endpoint"`
}

func loadFileConfig(path string, base hoaxcheck.Config) (hoaxcheck.Config, string, error) {
	endpoint := ""
	if path == "" {
		return base, endpoint, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return base, endpoint, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return base, endpoint, fmt.Errorf("parse config file: %w", err)
	}
	if len(fc.Domains) > 0 {
		base.Domains = fc.Domains
	}
	if fc.HTTPTimeoutSec > 0 {
		base.HTTPTimeout = time.Duration(fc.HTTPTimeoutSec) * time.Second
	}
	if fc.FetchAttempts > 0 {
		base.FetchAttempts = fc.FetchAttempts
	}
	if fc.PerHostConcurrency > 0 {
		base.PerHostConcurrency = fc.PerHostConcurrency
	}
	if fc.MaxBodyBytes > 0 {
		base.MaxBodyBytes = fc.MaxBodyBytes
	}
	if fc.MinTextChars > 0 {
		base.MinTextChars = fc.MinTextChars
	}
	if fc.CacheTTLSec > 0 {
		base.CacheTTL = time.Duration(fc.CacheTTLSec) * time.Second
	}
	if fc.CacheMaxEntries > 0 {
		base.CacheMaxEntries = fc.CacheMaxEntries
	}
	return base, fc.ClassifierEndpoint, nil
}

func main() {
	// Setup structured logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Local development convenience; missing .env is not an error.
	if err := godotenv.Load(); err == nil {
		logger.Info("loaded environment from .env")
	}

	logger.Info("hoaxcheck service initializing", "version", "1.0.0")

	defaultPort := getEnv("PORT", "8080")
	defaultClassifierURL := getEnv("CLASSIFIER_URL", "http://localhost:8001")
	defaultCacheTTL := getEnv("CACHE_TTL_SECONDS", "")

	// Command-line flags (override environment variables)
	port := flag.String("port", defaultPort, "Server port")
	configPath := flag.String("config", getEnv("CONFIG_FILE", ""), "Path to YAML config file")
	classifierURL := flag.String("classifier-url", defaultClassifierURL, "Classifier service base URL")
	disableCORS := flag.Bool("disable-cors", false, "Disable CORS")
	flag.Parse()

	pipelineConfig, fileClassifierURL, err := loadFileConfig(*configPath, hoaxcheck.DefaultConfig())
	if err != nil {
		logger.Error("failed to load config file", "path", *configPath, "error", err)
		os.Exit(1)
	}

	if defaultCacheTTL != "" {
		ttl, err := strconv.Atoi(defaultCacheTTL)
		if err != nil || ttl <= 0 {
			logger.Warn("invalid CACHE_TTL_SECONDS value, keeping default",
				"provided", defaultCacheTTL, "error", err)
		} else {
			pipelineConfig.CacheTTL = time.Duration(ttl) * time.Second
		}
	}

	endpoint := *classifierURL
	if endpoint == defaultClassifierURL && fileClassifierURL != "" {
		endpoint = fileClassifierURL
	}

	// PostgreSQL database configuration (required)
	dbHost := getEnv("DB_HOST", "")
	if dbHost == "" {
		logger.Error("DB_HOST environment variable is required")
		os.Exit(1)
	}

	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "hoaxcheck")
	dbPassword := getEnv("DB_PASSWORD", "hoaxcheck_dev_pass")
	dbName := getEnv("DB_NAME", "hoaxcheck")

	dbConfig := db.Config{
		DSN: fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort, dbUser, dbPassword, dbName),
	}
	logger.Info("using PostgreSQL database", "host", dbHost, "port", dbPort, "database", dbName)

	config := api.Config{
		Addr:               ":" + *port,
		DBConfig:           dbConfig,
		PipelineConfig:     pipelineConfig,
		ClassifierEndpoint: endpoint,
		CORSEnabled:        !*disableCORS,
	}

	server, err := api.NewServer(config)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server in a goroutine
	go func() {
		logger.Info("hoaxcheck service starting",
			"port", *port,
			"database_host", dbHost,
			"database_name", dbName,
			"classifier_url", endpoint,
			"domains", len(pipelineConfig.Domains),
			"cache_ttl", pipelineConfig.CacheTTL.String(),
		)

		if err := server.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
