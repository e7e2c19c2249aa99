// Package config loads process configuration from the environment,
// optionally seeded by a .env file, the same way the teacher CLI does in
// its main().
package config

import (
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var loadOnce sync.Once

// Load seeds the environment from a .env file in the working directory if
// one exists. It is safe to call more than once; only the first call has
// an effect. Missing .env files are not an error.
func Load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// GetEnv returns the environment variable named key, or fallback if unset
// or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvBool parses the environment variable named key as a bool, or
// returns fallback if unset or unparsable.
func GetEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// DBEngine is the store backend selector.
type DBEngine string

const (
	EngineSQLite DBEngine = "sqlite"
	EngineMongo  DBEngine = "mongo"
)

// StoreEngine reads WAVEPRINT_DB_ENGINE, defaulting to sqlite.
func StoreEngine() DBEngine {
	switch GetEnv("WAVEPRINT_DB_ENGINE", string(EngineSQLite)) {
	case string(EngineMongo):
		return EngineMongo
	default:
		return EngineSQLite
	}
}

// MongoURI reads WAVEPRINT_MONGO_URI, defaulting to a local instance.
func MongoURI() string {
	return GetEnv("WAVEPRINT_MONGO_URI", "mongodb://localhost:27017")
}

// MongoDatabase reads WAVEPRINT_MONGO_DB, defaulting to "waveprint".
func MongoDatabase() string {
	return GetEnv("WAVEPRINT_MONGO_DB", "waveprint")
}
