package config

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type AuthConfig struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

var (
	authConfig *AuthConfig
	authOnce   sync.Once
)

func LoadAuthConfig() *AuthConfig {
	authOnce.Do(func() {
		secret := os.Getenv("JWT_SECRET_KEY")
		if secret == "" {
			secret = "default_secret_key"
			logrus.Warn("Warning: JWT_SECRET_KEY not set, using default key")
		}
		ttl := 30 * 24 * time.Hour
		if hours, err := strconv.Atoi(os.Getenv("JWT_TTL_HOURS")); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
		authConfig = &AuthConfig{
			JWTSecret: []byte(secret),
			TokenTTL:  ttl,
		}
	})
	return authConfig
}
