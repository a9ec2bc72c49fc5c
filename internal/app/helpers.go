package app

import (
	"strings"
	"time"

	"github.com/bhutan-travel/core/internal/config"
	jwtpkg "github.com/bhutan-travel/core/internal/pkg/jwt"
	"github.com/bhutan-travel/core/internal/pkg/mail"
	"go.uber.org/zap"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}
}

func mailConfig(cfg *config.AppConfig) mail.Config {
	m := cfg.Mail
	return mail.Config{
		Enable:    m.Enable,
		Host:      m.Host,
		Port:      m.Port,
		User:      m.User,
		Pass:      m.Pass,
		From:      m.From,
		ReplyTo:   m.ReplyTo,
		UseResend: strings.TrimSpace(m.ResendKey) != "",
		ResendKey: m.ResendKey,
		Operator:  m.Operator,
		SiteName:  cfg.Site.Name,
		AdminURL:  cfg.Site.AdminURL,
	}
}

func sessionTTL(cfg *config.AppConfig) time.Duration {
	return time.Duration(cfg.SessionHours) * time.Hour
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
