package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Contains(t, cfg.DSN, "tcp(127.0.0.1:3306)/bhutan_tours")
	assert.Contains(t, cfg.DSN, "charset=utf8mb4")
	assert.Contains(t, cfg.DSN, "parseTime=true")
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, StorageLocal, cfg.Storage.Driver)
	assert.Equal(t, 5, cfg.RateLimit.InquiryPerMinute)
	assert.False(t, cfg.Mail.Enable)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
port: 9000
env: production
jwt_secret: s3cret
allowed_origins: [" https://bhutan.example ", ""]
database:
  host: db
  user: tours
  password: pw
  name: catalog
  max_open_conns: 7
redis:
  host: cache
  db: 2
mail:
  host: smtp.example
  operator: ops@example.com
storage:
  driver: S3
  public_prefix: media/
  s3:
    bucket: images
    endpoint: https://r2.example/
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, []string{"https://bhutan.example"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DSN, "tours:pw@tcp(db:3306)/catalog")
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.Equal(t, defaultDBMaxIdle, cfg.Database.MaxIdleConns)
	assert.Equal(t, "redis://cache:6379/2", cfg.RedisURL)
	assert.True(t, cfg.Mail.Enable)
	assert.Equal(t, 465, cfg.Mail.Port)
	assert.Equal(t, StorageS3, cfg.Storage.Driver)
	assert.Equal(t, "/media", cfg.Storage.PublicPrefix)
	assert.Equal(t, "https://r2.example", cfg.Storage.S3.Endpoint)
	assert.Equal(t, "auto", cfg.Storage.S3.Region)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "prot: 80\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prot")
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"port":           "port: 70000\n",
		"storage driver": "storage:\n  driver: ftp\n",
		"s3 bucket":      "storage:\n  driver: s3\n",
		"jwt secret":     "env: production\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestEnvOverridesYAML(t *testing.T) {
	t.Setenv("TOURS_PORT", "8181")
	t.Setenv("TOURS_DSN", "u:p@tcp(x:3306)/y")
	t.Setenv("TOURS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TOURS_MAIL_ENABLE", "false")
	t.Setenv("TOURS_SMTP_HOST", "smtp.example")

	cfg, err := Load(writeConfig(t, "port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Port)
	assert.Equal(t, "u:p@tcp(x:3306)/y", cfg.DSN)
	assert.Len(t, cfg.AllowedOrigins, 2)
	assert.False(t, cfg.Mail.Enable)
	assert.Equal(t, "smtp.example", cfg.Mail.Host)
}

func TestImageFormats(t *testing.T) {
	cfg := defaultAppConfig()
	cfg.Storage.AllowedFormats = " .JPG, png ,,webp"
	assert.Equal(t, []string{"jpg", "png", "webp"}, cfg.ImageFormats())
}
