package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coteroyale/storefront/internal/api"
	"github.com/coteroyale/storefront/internal/checkout"
	"github.com/coteroyale/storefront/internal/cms"
	"github.com/coteroyale/storefront/internal/config"
	"github.com/coteroyale/storefront/internal/notify"
	"github.com/coteroyale/storefront/internal/payment"
	"github.com/coteroyale/storefront/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level, _ := log.ParseLevel(cfg.Log.Level)
	log.SetLevel(level)
	if level < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	for _, key := range cfg.Missing() {
		log.WithField("key", key).Warn("Secret is not configured, dependent endpoints will fail")
	}

	contactStore, searchStore, closeStores, err := newStores(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer closeStores()

	cmsClient := cms.NewClient(cms.Config{
		Repository:  cfg.CMS.Repository,
		Endpoint:    cfg.CMS.Endpoint,
		AccessToken: cfg.CMS.AccessToken,
		RefTTL:      cfg.CMS.RefTTL,
		Timeout:     cfg.Upstream.Timeout,
	})

	dispatcher := notify.NewDispatcher(
		notify.NewResendMailer(cfg.Email.Endpoint, cfg.Email.APIKey, cfg.Upstream.Timeout),
		notify.Config{
			OwnerFrom:        cfg.Email.OwnerFrom,
			ConfirmationFrom: cfg.Email.ConfirmationFrom,
		},
	)

	sessions := payment.NewStripeSessions(payment.StripeConfig{
		SecretKey:  cfg.Stripe.SecretKey,
		HTTPClient: &http.Client{Timeout: cfg.Upstream.Timeout},
	})

	handler := &api.Handler{
		ContactLimiter: ratelimit.New(ratelimit.ContactForm, contactStore),
		SearchLimiter:  ratelimit.New(ratelimit.API, searchStore),
		Settings:       cmsClient,
		Dispatcher:     dispatcher,
		Checkout:       checkout.NewService(cmsClient, sessions, cfg.Site.URL),
		Catalog:        cmsClient,
		Webhooks:       payment.NewWebhookVerifier(cfg.Stripe.WebhookSecret),
		HandleEvent:    payment.HandleEvent,
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(handler, cfg.CORS.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr":              cfg.HTTP.Addr,
			"ratelimit_backend": cfg.RateLimit.Backend,
			"cms_repository":    cfg.CMS.Repository,
		}).Info("Storefront API starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}

	// pending confirmation emails finish before exit
	dispatcher.Close()
	return nil
}

// newStores picks the rate limit backend. Redis keeps one window per client across
// replicas; memory is per process.
func newStores(ctx context.Context, cfg *config.Config) (contact, search ratelimit.Store, closeFn func(), err error) {
	if cfg.RateLimit.Backend != config.BackendRedis {
		return ratelimit.NewMemoryStore(), ratelimit.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	log.WithField("addr", cfg.Redis.Addr).Info("Rate limit windows stored in Redis")
	closeFn = func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("Failed to close redis client")
		}
	}
	return ratelimit.NewRedisStore(client, "ratelimit:contact:"),
		ratelimit.NewRedisStore(client, "ratelimit:api:"),
		closeFn, nil
}
