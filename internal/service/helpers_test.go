package service

import (
	"time"

	"github.com/stemsi/lms-backend/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour}
}
