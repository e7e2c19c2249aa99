package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("WAVEPRINT_TEST_UNSET_VAR", "")
	assert.Equal(t, "fallback", GetEnv("WAVEPRINT_TEST_UNSET_VAR", "fallback"))
}

func TestGetEnvBoolParsesAndFallsBack(t *testing.T) {
	t.Setenv("WAVEPRINT_TEST_BOOL", "true")
	assert.True(t, GetEnvBool("WAVEPRINT_TEST_BOOL", false))

	t.Setenv("WAVEPRINT_TEST_BOOL", "not-a-bool")
	assert.True(t, GetEnvBool("WAVEPRINT_TEST_BOOL", true))
}

func TestStoreEngineDefaultsToSQLite(t *testing.T) {
	t.Setenv("WAVEPRINT_DB_ENGINE", "")
	assert.Equal(t, EngineSQLite, StoreEngine())
}

func TestStoreEngineRecognizesMongo(t *testing.T) {
	t.Setenv("WAVEPRINT_DB_ENGINE", "mongo")
	assert.Equal(t, EngineMongo, StoreEngine())
}
