package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      AppConfig{Env: "development"},
		Midtrans: MidtransConfig{ServerKey: "SB-Mid-server-test"},
		Payment: PaymentConfig{
			ExpiryWindow:  15 * time.Minute,
			SweepInterval: 5 * time.Minute,
			PollInterval:  time.Second,
			SweepBatch:    100,
		},
	}
}

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_RequiresServerKeyInEveryEnvironment(t *testing.T) {
	for _, env := range []string{"development", "staging", "production"} {
		cfg := validConfig()
		cfg.App.Env = env
		cfg.Midtrans.ServerKey = ""

		err := cfg.Validate()
		require.Error(t, err, env)
		assert.Contains(t, err.Error(), "MIDTRANS_SERVER_KEY", env)
	}
}

func TestValidate_NonPositiveIntervals(t *testing.T) {
	cfg := validConfig()
	cfg.Payment.ExpiryWindow = 0
	cfg.Payment.SweepInterval = -time.Second

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_EXPIRY_MINUTES")
	assert.Contains(t, err.Error(), "PAYMENT_SWEEP_INTERVAL_SECONDS")
}

func TestValidate_KafkaNeedsBrokers(t *testing.T) {
	cfg := validConfig()
	cfg.Kafka.Enabled = true

	assert.Error(t, cfg.Validate())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PAYMENT_EXPIRY_MINUTES", "30")
	t.Setenv("MIDTRANS_ENV", "production")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.Payment.ExpiryWindow)
	assert.True(t, cfg.Midtrans.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.Payment.SweepInterval)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: "5432", Name: "brewline", User: "u", Password: "p", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=db user=u password=p dbname=brewline port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
