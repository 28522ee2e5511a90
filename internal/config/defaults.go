package config

import (
	"time"

	"github.com/spf13/viper"
)

// Rate limit backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "https://fragrancecoteroyal.netlify.app"})

	v.SetDefault("cms.repository", "cote-royale")
	v.SetDefault("cms.endpoint", "")
	v.SetDefault("cms.access_token", "")
	v.SetDefault("cms.ref_ttl", 5*time.Minute)

	v.SetDefault("email.api_key", "")
	v.SetDefault("email.endpoint", "https://api.resend.com/emails")
	v.SetDefault("email.owner_from", "Contact Form <onboarding@resend.dev>")
	v.SetDefault("email.confirmation_from", "Cote Royale <onboarding@resend.dev>")

	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.webhook_secret", "")

	v.SetDefault("ratelimit.backend", BackendMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("upstream.timeout", 10*time.Second)
}

// legacyEnv maps keys to the variable names the site's hosting already provides.
var legacyEnv = map[string]string{
	"site.url":              "NEXT_PUBLIC_SITE_URL",
	"email.api_key":         "RESEND_API_KEY",
	"stripe.secret_key":     "STRIPE_SECRET_KEY",
	"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",
	"cms.repository":        "NEXT_PUBLIC_PRISMIC_ENVIRONMENT",
}
