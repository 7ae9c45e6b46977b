package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Model backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type AppConfig struct {
	Port string

	// Artifact location.
	ArtifactDir      string
	ArtifactManifest string

	// ModelBackend selects the XGBoost file named in the manifest ("local")
	// or an HTTP scoring endpoint ("remote").
	ModelBackend  string
	ModelEndpoint string
	ModelFeatures int

	// HTTPTimeout bounds outbound calls to the scoring endpoint.
	HTTPTimeout time.Duration

	// Export store retention.
	ExportMaxEntries    int           // max number of pending exports (0 = unlimited)
	ExportMaxAge        time.Duration // max age of a pending export (0 = unlimited)
	ExportPurgeInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.ArtifactDir = getenvDefault("ARTIFACT_DIR", "artifacts")
	cfg.ArtifactManifest = getenvDefault("ARTIFACT_MANIFEST", "manifest.yaml")

	cfg.ModelBackend = strings.ToLower(strings.TrimSpace(getenvDefault("MODEL_BACKEND", BackendLocal)))
	cfg.ModelEndpoint = os.Getenv("MODEL_ENDPOINT")
	cfg.ModelFeatures = getenvInt("MODEL_FEATURES", 0)
	switch cfg.ModelBackend {
	case BackendLocal:
	case BackendRemote:
		if cfg.ModelEndpoint == "" {
			return nil, fmt.Errorf("MODEL_ENDPOINT is required when MODEL_BACKEND=%s", BackendRemote)
		}
	default:
		return nil, fmt.Errorf("invalid MODEL_BACKEND %q: use %s or %s", cfg.ModelBackend, BackendLocal, BackendRemote)
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.ExportMaxEntries = getenvInt("EXPORT_MAX_ENTRIES", 256)
	if cfg.ExportMaxAge, err = getenvDuration("EXPORT_MAX_AGE", "30m"); err != nil {
		return nil, err
	}
	if cfg.ExportPurgeInterval, err = getenvDuration("EXPORT_PURGE_INTERVAL", "5m"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
