package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	CardProviderNotchPay    = "notchpay"
	CardProviderMercadoPago = "mercadopago"
)

type Config struct {
	App     AppConfig
	AWS     AWSConfig
	Redis   RedisConfig
	Gateway GatewayConfig
}

// Load reads the configuration from the process environment. Variables from a
// local .env file are already exported by godotenv/autoload in cmd/.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Gateway.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"dev"`
	Port      string `envconfig:"APP_PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AWSConfig keeps the variable names the DynamoDB client has always read;
// local DynamoDB does not validate credentials, hence the defaults.
type AWSConfig struct {
	Region           string `envconfig:"AWS_REGION" default:"us-east-1"`
	AccessKeyID      string `envconfig:"AWS_ACCESS_KEY_ID" default:"local"`
	SecretAccessKey  string `envconfig:"AWS_SECRET_ACCESS_KEY" default:"local"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT"`
	IntentsTable     string `envconfig:"PAYMENT_INTENTS_TABLE" default:"payment_intents"`
	PayablesTable    string `envconfig:"PAYABLES_TABLE" default:"payables"`
}

type RedisConfig struct {
	URL            string        `envconfig:"REDIS_URL"`
	Address        string        `envconfig:"REDIS_ADDR"`
	Password       string        `envconfig:"REDIS_PASSWORD"`
	DB             int           `envconfig:"REDIS_DB" default:"0"`
	DialTimeout    time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	IdempotencyTTL time.Duration `envconfig:"IDEMPOTENCY_TTL" default:"24h"`
}

// Enabled reports whether an idempotency store should be wired.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type GatewayConfig struct {
	Mock             bool          `envconfig:"PAYMENT_GATEWAY_MOCK" default:"false"`
	MockSettleAfter  time.Duration `envconfig:"PAYMENT_GATEWAY_MOCK_SETTLE_AFTER" default:"10s"`
	Currency         string        `envconfig:"PAYMENT_CURRENCY" default:"XAF"`
	CallbackURL      string        `envconfig:"PAYMENT_CALLBACK_URL"`
	NotchPayBaseURL  string        `envconfig:"NOTCHPAY_BASE_URL" default:"https://api.notchpay.co"`
	NotchPayKey      string        `envconfig:"NOTCHPAY_PUBLIC_KEY"`
	NotchPayTimeout  time.Duration `envconfig:"NOTCHPAY_TIMEOUT" default:"20s"`
	CardProvider     string        `envconfig:"CARD_PROVIDER" default:"notchpay"`
	MercadoPagoToken string        `envconfig:"MERCADOPAGO_ACCESS_TOKEN"`
}

func (g GatewayConfig) validate() error {
	switch strings.ToLower(g.CardProvider) {
	case CardProviderNotchPay, CardProviderMercadoPago:
	default:
		return fmt.Errorf("unsupported CARD_PROVIDER %q", g.CardProvider)
	}
	return nil
}
