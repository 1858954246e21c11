package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_LLMConfig(t *testing.T) {
	os.Setenv("GROQ_API_KEY", "test-key")
	os.Setenv("GROQ_MODEL", "llama3-70b-8192")
	defer func() {
		os.Unsetenv("GROQ_API_KEY")
		os.Unsetenv("GROQ_MODEL")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("DB_NAME")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 3001, cfg.Server.Port)
	assert.Equal(t, "ecommerce_assistant", cfg.Database.Database)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "secret",
		Database: "ecommerce_assistant",
		SSLMode:  "disable",
	}

	dsn := cfg.DatabaseDSN()
	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=ecommerce_assistant sslmode=disable", dsn)
}
