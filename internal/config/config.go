package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string `mapstructure:"ENV"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	DBHost string `mapstructure:"DB_HOST"`
	DBPort string `mapstructure:"DB_PORT"`
	DBUser string `mapstructure:"DB_USER"`
	DBPass string `mapstructure:"DB_PASS"`
	DBName string `mapstructure:"DB_NAME"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	KafkaBrokers  string `mapstructure:"KAFKA_BROKERS"`
	OrderTopic    string `mapstructure:"ORDER_TOPIC"`
	ConsumerGroup string `mapstructure:"VOUCHER_CONSUMER_GROUP"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	ShippingFee   int64         `mapstructure:"SHIPPING_FEE"`
	APIBaseURL    string        `mapstructure:"API_BASE_URL"`
	HTTPTimeout   time.Duration `mapstructure:"HTTP_TIMEOUT"`
	SessionPrefix string        `mapstructure:"SESSION_PREFIX"`
}

var defaults = map[string]any{
	"ENV":                    "development",
	"SERVER_PORT":            "5000",
	"DB_HOST":                "127.0.0.1",
	"DB_PORT":                "3306",
	"DB_USER":                "root",
	"DB_PASS":                "",
	"DB_NAME":                "food_order",
	"REDIS_ADDR":             "localhost:6379",
	"KAFKA_BROKERS":          "localhost:9092,localhost:9093,localhost:9094",
	"ORDER_TOPIC":            "order-topic",
	"VOUCHER_CONSUMER_GROUP": "voucher-usage-group",
	"JWT_SECRET":             "secret",
	"RATE_LIMIT_RPS":         20,
	"RATE_LIMIT_BURST":       40,
	"SHIPPING_FEE":           30000,
	"API_BASE_URL":           "http://localhost:5000/api",
	"HTTP_TIMEOUT":           "10s",
	"SESSION_PREFIX":         "storefront",
}

// Load reads envFile when it exists, then lets environment variables
// override it. Every key has a default, so an empty environment works.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", envFile, err)
			}
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cf, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) IsTest() bool {
	return c.Env == "test"
}
