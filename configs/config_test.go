package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const baseYAML = `
app:
  name: storefront
  http_addr: ":8080"
  log_level: info
  log_file: ./logs/app.log
mysql:
  dsn: "user:pass@tcp(localhost:3306)/storefront?parseTime=true"
security:
  jwt_secret: test-secret
  issuer: storefront
  audience: storefront-clients
  ttl: 30m
payment:
  currency: INR
  cod:
    enabled: true
`

func TestLoad_BaseAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", baseYAML)
	writeConfig(t, dir, "dev.yaml", "app:\n  log_level: debug\n")

	t.Setenv("STOREFRONT_MYSQL__DSN", "root@tcp(db:3306)/storefront")

	cfg, err := Load(dir, "dev")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	// env beats files
	assert.Equal(t, "root@tcp(db:3306)/storefront", cfg.MySQL.DSN)
	assert.Equal(t, "INR", cfg.Payment.Currency)
	assert.True(t, cfg.Payment.COD.Enabled)
}

func TestLoad_MissingEnvFileIsFine(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", baseYAML)

	_, err := Load(dir, "nope")
	assert.NoError(t, err)
}

func TestValidate_ProviderRequirements(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "base.yaml", baseYAML+`
  stripe:
    enabled: true
`)
	_, err := Load(dir, "dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stripe")
}

func TestValidate_RequiredFields(t *testing.T) {
	cfg := Config{}
	assert.Error(t, cfg.Validate())

	cfg.App.HTTPAddr = ":8080"
	assert.Error(t, cfg.Validate())

	cfg.MySQL.DSN = "dsn"
	assert.Error(t, cfg.Validate())

	cfg.Security.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())
}
