package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"product-storefront/internal/config"
	"product-storefront/internal/storefront/client"
	"product-storefront/internal/storefront/credentials"
	storefronthttp "product-storefront/internal/storefront/http"
	"product-storefront/internal/storefront/messaging"
	"product-storefront/internal/storefront/service"

	_ "product-storefront/docs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	metricOutcomesTotal     = "storefront_outcomes_total"
	metricSoftFailuresTotal = "storefront_soft_failures_total"
	metricExchangesTotal    = "storefront_credential_exchanges_total"
)

// @title                       Storefront API
// @version                     1.0
// @description                 Customer and manager front ends aggregating the catalog and feedback services.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadStorefront()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	rabbitConn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Error("connect rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitConn.Close()

	publisher, err := messaging.NewRabbitPublisher(rabbitConn, cfg.EventsQueue)
	if err != nil {
		logger.Error("init publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricOutcomesTotal,
		Help: "Orchestrated requests by operation and outcome",
	}, []string{"operation", "outcome"})
	softFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricSoftFailuresTotal,
		Help: "Favourite changes rejected downstream and redirected as success",
	})
	exchanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricExchangesTotal,
		Help: "Credential exchanges by downstream registration",
	}, []string{"registration"})
	prometheus.MustRegister(outcomes, softFailures, exchanges)

	provider := credentials.NewProvider(newExchanger(cfg), exchanges, credentials.Config{
		ExpirySkew: cfg.CredentialExpirySkew,
	})

	catalogCfg := client.Config{BaseURL: cfg.CatalogServiceURL, Timeout: cfg.DownstreamTimeout}
	feedbackCfg := client.Config{BaseURL: cfg.FeedbackServiceURL, Timeout: cfg.DownstreamTimeout}

	svc := service.New(
		service.Clients{
			Catalog:    client.NewCatalog(catalogCfg),
			Favourites: client.NewFavourites(feedbackCfg),
			Reviews:    client.NewReviews(feedbackCfg),
		},
		provider,
		publisher,
		logger,
		service.Metrics{Outcomes: outcomes, SoftFailures: softFailures},
		service.Options{
			CatalogRegistration:  cfg.CatalogRegistration,
			FeedbackRegistration: cfg.FeedbackRegistration,
			FavouriteSoftFail:    cfg.FavouriteSoftFail,
		},
	)
	handler := storefronthttp.NewHandler(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(storefronthttp.RequestIDMiddleware())
	router.Use(storefronthttp.AccessLogMiddleware(logger))
	storefronthttp.RegisterRoutes(router, handler, publisher,
		storefronthttp.PrincipalMiddleware(),
		storefronthttp.RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront started",
			"addr", cfg.HTTPAddr,
			"credential_mode", cfg.CredentialMode,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("storefront stopped")
}

func newExchanger(cfg config.Storefront) credentials.Exchanger {
	if cfg.CredentialMode == config.CredentialModeClientCredentials {
		return credentials.NewClientCredentials(credentials.ClientCredentialsConfig{
			TokenURL:     cfg.OAuthTokenURL,
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			Scopes:       cfg.OAuthScopes,
		})
	}
	return credentials.NewRelay()
}
