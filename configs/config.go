package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	Cart struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"cart"`

	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Rabbit struct {
		URL          string `koanf:"url"`
		Exchange     string `koanf:"exchange"`
		ConfirmQueue string `koanf:"confirm_queue"`
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers         []string `koanf:"brokers"`
		SettlementTopic string   `koanf:"settlement_topic"`
		GroupID         string   `koanf:"group_id"`
	} `koanf:"kafka"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`

	Payment PaymentConfig `koanf:"payment"`
}

// PaymentConfig carries one block per provider; each can be flipped on and
// off independently. The registry is built from the enabled set only.
type PaymentConfig struct {
	Currency string `koanf:"currency"`

	Stripe struct {
		Enabled        bool   `koanf:"enabled"`
		SecretKey      string `koanf:"secret_key"`
		PublishableKey string `koanf:"publishable_key"`
		WebhookSecret  string `koanf:"webhook_secret"`
		SuccessURL     string `koanf:"success_url"`
		CancelURL      string `koanf:"cancel_url"`
	} `koanf:"stripe"`

	Razorpay struct {
		Enabled       bool   `koanf:"enabled"`
		KeyID         string `koanf:"key_id"`
		KeySecret     string `koanf:"key_secret"`
		WebhookSecret string `koanf:"webhook_secret"`
	} `koanf:"razorpay"`

	COD struct {
		Enabled bool `koanf:"enabled"`
	} `koanf:"cod"`

	BankTransfer struct {
		Enabled   bool   `koanf:"enabled"`
		VPA       string `koanf:"vpa"`
		PayeeName string `koanf:"payee_name"`
	} `koanf:"bank_transfer"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix STOREFRONT_, nested with __)
	// e.g. STOREFRONT_MYSQL__DSN, STOREFRONT_PAYMENT__STRIPE__SECRET_KEY
	if err := k.Load(env.Provider("STOREFRONT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "STOREFRONT_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.MySQL.DSN == "" {
		return fmt.Errorf("mysql.dsn required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret required")
	}
	if c.Payment.Stripe.Enabled && c.Payment.Stripe.SecretKey == "" {
		return fmt.Errorf("payment.stripe.secret_key required when stripe is enabled")
	}
	if c.Payment.Razorpay.Enabled && (c.Payment.Razorpay.KeyID == "" || c.Payment.Razorpay.KeySecret == "") {
		return fmt.Errorf("payment.razorpay.key_id and key_secret required when razorpay is enabled")
	}
	if c.Payment.BankTransfer.Enabled && c.Payment.BankTransfer.VPA == "" {
		return fmt.Errorf("payment.bank_transfer.vpa required when bank transfer is enabled")
	}
	return nil
}
