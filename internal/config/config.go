package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at configPath, then layers .env and TOURS_*
// environment overrides on top. A missing file is only an error when the
// caller asked for a specific path.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	raw := rawAppConfig{}
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnvOverrides(&raw, os.LookupEnv)

	cfg := defaultAppConfig()
	applyRawAppConfig(&cfg, raw)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:         defaultDBHost,
			Port:         defaultDBPort,
			User:         defaultDBUser,
			Name:         defaultDBName,
			Charset:      defaultDBCharset,
			ParseTime:    true,
			Loc:          defaultDBLoc,
			MaxOpenConns: defaultDBMaxOpen,
			MaxIdleConns: defaultDBMaxIdle,
		},
		Redis:        RedisRuntimeConfig{Port: defaultRedisPort},
		SessionHours: defaultSessionHours,
		Site:         SiteConfig{Name: defaultSiteName},
		Storage: StorageConfig{
			Driver:         defaultStorageDriver,
			PublicPrefix:   defaultPublicPrefix,
			Placeholder:    defaultPlaceholder,
			MaxSizeMB:      defaultMaxImageMB,
			MaxWidth:       defaultMaxImageWidth,
			AllowedFormats: defaultImageFormats,
		},
		RateLimit: RateLimitConfig{InquiryPerMinute: defaultInquiryPerMin},
		Legacy:    LegacyConfig{Database: defaultLegacyDatabase},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	cfg.Env = normalizeEnv(raw.Env)
	cfg.Paths = RuntimePathsConfig{
		Logs:   strings.TrimSpace(raw.Paths.Logs),
		Static: strings.TrimSpace(raw.Paths.Static),
	}
	cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	cfg.JWTSecret = strings.TrimSpace(raw.JWTSecret)
	if raw.SessionHours > 0 {
		cfg.SessionHours = raw.SessionHours
	}

	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	if dsn := strings.TrimSpace(raw.DSN); dsn != "" {
		cfg.Database.DSN = dsn
	}
	cfg.DSN = cfg.Database.DSNValue()

	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw.Redis)
	if u := strings.TrimSpace(raw.RedisURL); u != "" {
		cfg.Redis.URL = u
	}
	cfg.RedisURL = cfg.Redis.URLValue()

	setString(&cfg.Site.Name, raw.Site.Name)
	setString(&cfg.Site.URL, strings.TrimRight(strings.TrimSpace(raw.Site.URL), "/"))
	setString(&cfg.Site.AdminURL, strings.TrimRight(strings.TrimSpace(raw.Site.AdminURL), "/"))

	cfg.Mail = MailConfig{
		Host:      strings.TrimSpace(raw.Mail.Host),
		Port:      raw.Mail.Port,
		User:      strings.TrimSpace(raw.Mail.User),
		Pass:      raw.Mail.Pass,
		From:      strings.TrimSpace(raw.Mail.From),
		ReplyTo:   strings.TrimSpace(raw.Mail.ReplyTo),
		ResendKey: strings.TrimSpace(raw.Mail.ResendKey),
		Operator:  strings.TrimSpace(raw.Mail.Operator),
	}
	if raw.Mail.Enable != nil {
		cfg.Mail.Enable = *raw.Mail.Enable
	} else {
		cfg.Mail.Enable = cfg.Mail.Host != "" || cfg.Mail.ResendKey != ""
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 465
	}

	cfg.Storage = applyRawStorageConfig(cfg.Storage, raw.Storage)

	if raw.RateLimit.InquiryPerMinute != 0 {
		cfg.RateLimit.InquiryPerMinute = raw.RateLimit.InquiryPerMinute
	}

	cfg.Legacy.MongoURI = strings.TrimSpace(raw.Legacy.MongoURI)
	setString(&cfg.Legacy.Database, raw.Legacy.Database)

	cfg.BootstrapAdmin = BootstrapAdminConfig{
		Username: strings.TrimSpace(raw.BootstrapAdmin.Username),
		Email:    strings.ToLower(strings.TrimSpace(raw.BootstrapAdmin.Email)),
		Password: raw.BootstrapAdmin.Password,
		Name:     strings.TrimSpace(raw.BootstrapAdmin.Name),
	}
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawDatabaseConfig) DatabaseRuntimeConfig {
	cfg := current
	setString(&cfg.DSN, raw.DSN)
	setString(&cfg.Host, raw.Host)
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	setString(&cfg.User, raw.User)
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	setString(&cfg.Name, raw.Name)
	setString(&cfg.Charset, raw.Charset)
	if raw.ParseTime != nil {
		cfg.ParseTime = *raw.ParseTime
	}
	setString(&cfg.Loc, raw.Loc)
	if len(raw.Params) > 0 {
		cfg.Params = copyStringMap(raw.Params)
	}
	if raw.MaxOpenConns > 0 {
		cfg.MaxOpenConns = raw.MaxOpenConns
	}
	if raw.MaxIdleConns > 0 {
		cfg.MaxIdleConns = raw.MaxIdleConns
	}
	return cfg
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawRedisConfig) RedisRuntimeConfig {
	cfg := current
	setString(&cfg.URL, raw.URL)
	setString(&cfg.Host, raw.Host)
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	setString(&cfg.Username, raw.Username)
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if raw.DB != nil {
		cfg.DB = *raw.DB
	}
	if raw.TLS != nil {
		cfg.TLS = *raw.TLS
	}
	return cfg
}

func applyRawStorageConfig(current StorageConfig, raw rawStorageConfig) StorageConfig {
	cfg := current
	if d := strings.ToLower(strings.TrimSpace(raw.Driver)); d != "" {
		cfg.Driver = d
	}
	if p := strings.TrimSpace(raw.PublicPrefix); p != "" {
		cfg.PublicPrefix = "/" + strings.Trim(p, "/")
	}
	setString(&cfg.Placeholder, raw.Placeholder)
	if raw.MaxSizeMB > 0 {
		cfg.MaxSizeMB = raw.MaxSizeMB
	}
	if raw.MaxWidth > 0 {
		cfg.MaxWidth = raw.MaxWidth
	}
	setString(&cfg.AllowedFormats, strings.ToLower(raw.AllowedFormats))

	cfg.S3 = S3Config{
		Endpoint:        strings.TrimRight(strings.TrimSpace(raw.S3.Endpoint), "/"),
		Region:          strings.TrimSpace(raw.S3.Region),
		Bucket:          strings.TrimSpace(raw.S3.Bucket),
		AccessKeyID:     strings.TrimSpace(raw.S3.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(raw.S3.SecretAccessKey),
		CustomDomain:    strings.TrimRight(strings.TrimSpace(raw.S3.CustomDomain), "/"),
		Prefix:          strings.Trim(strings.TrimSpace(raw.S3.Prefix), "/"),
	}
	if raw.S3.PathStyle != nil {
		cfg.S3.PathStyle = *raw.S3.PathStyle
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "auto"
	}
	return cfg
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	switch c.Storage.Driver {
	case StorageLocal:
	case StorageS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required when storage.driver is s3")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q, expected local or s3", c.Storage.Driver)
	}
	if c.RateLimit.InquiryPerMinute < 0 {
		return fmt.Errorf("invalid rate_limit.inquiry_per_minute %d", c.RateLimit.InquiryPerMinute)
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return errors.New("jwt_secret is required outside development")
	}
	return nil
}

func setString(dst *string, v string) {
	if t := strings.TrimSpace(v); t != "" {
		*dst = t
	}
}

func copyStringMap(input map[string]string) map[string]string {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(value)
	}
	return out
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	trimmed := strings.ToLower(strings.TrimSpace(env))
	if trimmed == "" {
		return defaultEnv
	}
	return trimmed
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) StaticDir() string {
	if c == nil {
		return ResolveRuntimePath("", "static")
	}
	return ResolveRuntimePath(c.Paths.Static, "static")
}

// ImageFormats returns the accepted upload extensions without dots.
func (c *AppConfig) ImageFormats() []string {
	parts := strings.Split(c.Storage.AllowedFormats, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(p)), ".")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
