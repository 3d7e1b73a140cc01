package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	// Viper trata una variable vacía como no definida.
	for _, k := range []string{"APP_STORAGE", "HTTP_PORT", "REDIS_ADDR", "REPAIR_LOCK_TTL_SECONDS", "LEDGER_DIVERGENCE_ALERT_PCT", "LEDGER_LOCALE"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.App.Storage)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.Redis.RepairLockTTL)
	assert.True(t, cfg.Ledger.DivergenceAlertPct.IsZero())
	assert.Equal(t, "es", cfg.Ledger.Locale)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REPAIR_LOCK_TTL_SECONDS", "60")
	t.Setenv("LEDGER_DIVERGENCE_ALERT_PCT", "2.5")
	t.Setenv("LEDGER_LOCALE", "pt-BR")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.App.Storage)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, time.Minute, cfg.Redis.RepairLockTTL)
	assert.Equal(t, "2.5", cfg.Ledger.DivergenceAlertPct.String())
	assert.Equal(t, "pt-BR", cfg.Ledger.Locale)
}

func TestLoad_RechazaValoresInvalidos(t *testing.T) {
	t.Setenv("APP_STORAGE", "sqlite")
	_, err := Load()
	assert.ErrorContains(t, err, "APP_STORAGE")

	t.Setenv("APP_STORAGE", "memory")
	t.Setenv("LEDGER_DIVERGENCE_ALERT_PCT", "abc")
	_, err = Load()
	assert.ErrorContains(t, err, "LEDGER_DIVERGENCE_ALERT_PCT")

	t.Setenv("LEDGER_DIVERGENCE_ALERT_PCT", "-1")
	_, err = Load()
	assert.ErrorContains(t, err, "negativo")
}

func TestDBConfig_DSNEscapaContraseña(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "abastecimiento", SSLMode: "disable"}
	dsn := c.DSN()
	assert.Contains(t, dsn, "postgres://app:p%40ss%3Aw%2Frd@db:5432/abastecimiento")
	assert.Equal(t, dsn, c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
