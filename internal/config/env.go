package config

import (
	"strconv"
	"strings"
)

type lookupFunc func(key string) (string, bool)

// applyEnvOverrides copies TOURS_* variables onto the raw YAML config so
// the usual normalization applies to both sources.
func applyEnvOverrides(raw *rawAppConfig, lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				*dst = n
			}
		}
	}
	flag := func(key string, dst **bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*dst = &b
			}
		}
	}

	num("PORT", &raw.Port)
	str("ENV", &raw.Env)
	str("DSN", &raw.DSN)
	str("REDIS_URL", &raw.RedisURL)
	str("JWT_SECRET", &raw.JWTSecret)
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok && strings.TrimSpace(v) != "" {
		raw.AllowedOrigins = strings.Split(v, ",")
	}

	str("DB_HOST", &raw.Database.Host)
	num("DB_PORT", &raw.Database.Port)
	str("DB_USER", &raw.Database.User)
	str("DB_PASSWORD", &raw.Database.Password)
	str("DB_NAME", &raw.Database.Name)

	str("SITE_URL", &raw.Site.URL)
	str("ADMIN_URL", &raw.Site.AdminURL)

	flag("MAIL_ENABLE", &raw.Mail.Enable)
	str("SMTP_HOST", &raw.Mail.Host)
	num("SMTP_PORT", &raw.Mail.Port)
	str("SMTP_USER", &raw.Mail.User)
	str("SMTP_PASS", &raw.Mail.Pass)
	str("MAIL_FROM", &raw.Mail.From)
	str("RESEND_API_KEY", &raw.Mail.ResendKey)
	str("OPERATOR_EMAIL", &raw.Mail.Operator)

	str("STORAGE_DRIVER", &raw.Storage.Driver)
	str("S3_ENDPOINT", &raw.Storage.S3.Endpoint)
	str("S3_REGION", &raw.Storage.S3.Region)
	str("S3_BUCKET", &raw.Storage.S3.Bucket)
	str("S3_ACCESS_KEY_ID", &raw.Storage.S3.AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &raw.Storage.S3.SecretAccessKey)
	str("S3_CUSTOM_DOMAIN", &raw.Storage.S3.CustomDomain)

	str("MONGO_URI", &raw.Legacy.MongoURI)
	str("MONGO_DATABASE", &raw.Legacy.Database)

	str("ADMIN_USERNAME", &raw.BootstrapAdmin.Username)
	str("ADMIN_EMAIL", &raw.BootstrapAdmin.Email)
	str("ADMIN_PASSWORD", &raw.BootstrapAdmin.Password)
}
