package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_splitList(t *testing.T) {
	assert.Equal(t, []string{"Mystery", "Novel", "Science & Math"}, splitList(" Mystery,Novel, ,Science & Math ,"))
	assert.Nil(t, splitList(""))
	assert.Nil(t, splitList(" , "))
}

func Test_envNumbers(t *testing.T) {
	t.Setenv("TEST_RPS", "0.5")
	t.Setenv("TEST_BURST", "10")
	assert.Equal(t, 0.5, envFloat("TEST_RPS", 2))
	assert.Equal(t, 10, envInt("TEST_BURST", 4))

	t.Setenv("TEST_RPS", "fast")
	t.Setenv("TEST_BURST", "-3")
	assert.Equal(t, 2.0, envFloat("TEST_RPS", 2))
	assert.Equal(t, 4, envInt("TEST_BURST", 4))

	assert.Equal(t, 7, envInt("TEST_UNSET_KEY", 7))
}

func Test_loadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{
			"PORT", "DB_CONNECTION_STRING", "JWT_SECRET", "SCHEDULER_TOKEN",
			"SENDGRID_API_KEY", "SENDGRID_FROM_EMAIL", "SENDGRID_FROM_NAME",
			"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
			"BOOTSTRAP_LIBRARIAN_USERNAME", "BOOTSTRAP_LIBRARIAN_PASSWORD",
		} {
			t.Setenv(key, "")
		}

		cfg := loadConfig()
		assert.Equal(t, defaultPort, cfg.port)
		assert.Equal(t, defaultDatabaseURL, cfg.databaseURL)
		assert.Len(t, cfg.jwtSecret, 64)
		assert.Equal(t, defaultSendGridFrom, cfg.sendGridFromEmail)
		assert.Equal(t, defaultRateLimitRPS, cfg.rateLimitRPS)
		assert.Equal(t, defaultRateLimitBurst, cfg.rateLimitBurst)
		assert.Empty(t, cfg.corsAllowedOrigins)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9000")
		t.Setenv("JWT_SECRET", "s3cret")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test")
		t.Setenv("HOME_GENRES", "Poetry")
		t.Setenv("BOOTSTRAP_LIBRARIAN_USERNAME", "librarian")

		cfg := loadConfig()
		assert.Equal(t, "9000", cfg.port)
		assert.Equal(t, []byte("s3cret"), cfg.jwtSecret)
		assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.corsAllowedOrigins)
		assert.Equal(t, []string{"Poetry"}, cfg.homeGenres)
		assert.Equal(t, "librarian", cfg.librarianUsername)
	})

	t.Run("empty home genres", func(t *testing.T) {
		t.Setenv("HOME_GENRES", "")
		assert.Empty(t, loadConfig().homeGenres)
	})
}
