package config

import (
	"fmt"
	"os"
	"time"

	"github.com/avbelov/mini-ledger/backend/internal/common/constants"
	commonerrors "github.com/avbelov/mini-ledger/backend/internal/common/errors"
)

const (
	StoreDriverJSONFile = "jsonfile"
	StoreDriverPostgres = "postgres"
)

type LedgerConfig struct {
	HTTPPort       string
	StoreDriver    string
	SnapshotPath   string
	DatabaseURL    string
	AdminUsername  string
	RequestTimeout time.Duration
}

func LoadLedgerConfig() (LedgerConfig, error) {
	cfg := LedgerConfig{
		HTTPPort:       getEnv("LEDGER_HTTP_PORT", constants.DefaultHTTPPort),
		StoreDriver:    getEnv("LEDGER_STORE", StoreDriverJSONFile),
		SnapshotPath:   getEnv("LEDGER_SNAPSHOT_PATH", constants.DefaultSnapshotPath),
		AdminUsername:  getEnv("LEDGER_ADMIN_USER", constants.DefaultAdminUsername),
		RequestTimeout: getDurationEnv("LEDGER_REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
	}

	switch cfg.StoreDriver {
	case StoreDriverJSONFile:
	case StoreDriverPostgres:
		databaseURL, err := mustEnv("DATABASE_URL")
		if err != nil {
			return LedgerConfig{}, err
		}
		cfg.DatabaseURL = databaseURL
	default:
		return LedgerConfig{}, fmt.Errorf("unknown LEDGER_STORE driver: %q", cfg.StoreDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
