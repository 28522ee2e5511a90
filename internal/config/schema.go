// Package config loads storefront-api settings from defaults, an optional YAML file and
// the environment.
package config

import "time"

// Config is the full service configuration.
type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Site      SiteConfig      `mapstructure:"site"`
	CORS      CORSConfig      `mapstructure:"cors"`
	CMS       CMSConfig       `mapstructure:"cms"`
	Email     EmailConfig     `mapstructure:"email"`
	Stripe    StripeConfig    `mapstructure:"stripe"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
}

// HTTPConfig configures the listener
type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SiteConfig describes the public storefront
type SiteConfig struct {
	// URL is the origin checkout redirects fall back to.
	URL string `mapstructure:"url"`
}

// CORSConfig lists origins allowed to call the API. The first one is sent in
// Access-Control-Allow-Origin.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CMSConfig configures the Prismic client
type CMSConfig struct {
	Repository  string        `mapstructure:"repository"`
	Endpoint    string        `mapstructure:"endpoint"`
	AccessToken string        `mapstructure:"access_token"`
	RefTTL      time.Duration `mapstructure:"ref_ttl"`
}

// EmailConfig configures the Resend mailer
type EmailConfig struct {
	APIKey           string `mapstructure:"api_key"`
	Endpoint         string `mapstructure:"endpoint"`
	OwnerFrom        string `mapstructure:"owner_from"`
	ConfirmationFrom string `mapstructure:"confirmation_from"`
}

// StripeConfig holds Stripe credentials
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
}

// RateLimitConfig selects where rate limit windows are kept
type RateLimitConfig struct {
	// Backend is "memory" or "redis".
	Backend string `mapstructure:"backend"`
}

// RedisConfig configures the Redis connection used by the redis rate limit backend
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// UpstreamConfig bounds calls to the CMS, email and payment providers
type UpstreamConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}
