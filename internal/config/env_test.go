package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("UNIT_PRICE", "")
	t.Setenv("APP_CONFIG", "")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	env := LoadEnv()
	assert.Equal(t, ":8080", env.AppAddr)
	assert.Equal(t, int64(1800), env.Pricing.UnitPrice)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, env.KafkaBrokers)
}

func TestLoadEnvPricingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "caravan.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pricing]\nunit_price = 1900\nseat_capacity = 44\ncontact_phone = \"5512345678\"\n"), 0o600))

	t.Setenv("APP_CONFIG", path)
	t.Setenv("UNIT_PRICE", "")
	env := LoadEnv()

	assert.Equal(t, int64(1900), env.Pricing.UnitPrice)
	assert.Equal(t, 44, env.Pricing.SeatCapacity)
	assert.Equal(t, "5512345678", env.Pricing.ContactPhone)
}

func TestDSN(t *testing.T) {
	env := Env{DBUser: "u", DBPass: "p", DBHost: "h", DBPort: "3306", DBName: "caravan"}
	assert.Contains(t, env.DSN(), "u:p@tcp(h:3306)/caravan?parseTime=true")
	assert.Contains(t, env.DSN(), "multiStatements=true")

	env.DBDSN = "custom"
	assert.Equal(t, "custom", env.DSN())
}
