package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"product-storefront/internal/storefront"

	"github.com/prometheus/client_golang/prometheus"
)

type CredentialProvider interface {
	Credential(ctx context.Context, principal storefront.Principal, registration string) (storefront.Credential, error)
}

type CatalogClient interface {
	FindAllProducts(ctx context.Context, cred storefront.Credential, filter string) ([]storefront.Product, error)
	FindProduct(ctx context.Context, cred storefront.Credential, id int64) (storefront.Product, bool, error)
	CreateProduct(ctx context.Context, cred storefront.Credential, payload storefront.ProductPayload) (storefront.Product, error)
	UpdateProduct(ctx context.Context, cred storefront.Credential, id int64, payload storefront.ProductPayload) error
	DeleteProduct(ctx context.Context, cred storefront.Credential, id int64) error
}

type FavouritesClient interface {
	FindAllFavourites(ctx context.Context, cred storefront.Credential) ([]storefront.FavouriteMark, error)
	FindFavourite(ctx context.Context, cred storefront.Credential, productID int64) (storefront.FavouriteMark, bool, error)
	AddFavourite(ctx context.Context, cred storefront.Credential, productID int64) (storefront.FavouriteMark, error)
	RemoveFavourite(ctx context.Context, cred storefront.Credential, productID int64) error
}

type ReviewsClient interface {
	FindReviews(ctx context.Context, cred storefront.Credential, productID int64) ([]storefront.Review, error)
	CreateReview(ctx context.Context, cred storefront.Credential, productID int64, payload storefront.ReviewPayload) (storefront.Review, error)
}

type Publisher interface {
	Publish(ctx context.Context, event storefront.Event) error
}

type Clients struct {
	Catalog    CatalogClient
	Favourites FavouritesClient
	Reviews    ReviewsClient
}

type Metrics struct {
	Outcomes     *prometheus.CounterVec
	SoftFailures prometheus.Counter
}

type Options struct {
	CatalogRegistration  string
	FeedbackRegistration string
	// FavouriteSoftFail redirects as if successful when the feedback service
	// rejects adding a favourite; the rejection is logged and counted.
	// Removal rejections always re-render.
	FavouriteSoftFail bool
}

type Service struct {
	catalog     CatalogClient
	favourites  FavouritesClient
	reviews     ReviewsClient
	credentials CredentialProvider
	publisher   Publisher
	logger      *slog.Logger
	metrics     Metrics
	opts        Options
}

func New(clients Clients, credentials CredentialProvider, publisher Publisher, logger *slog.Logger, metrics Metrics, opts Options) *Service {
	return &Service{
		catalog:     clients.Catalog,
		favourites:  clients.Favourites,
		reviews:     clients.Reviews,
		credentials: credentials,
		publisher:   publisher,
		logger:      logger,
		metrics:     metrics,
		opts:        opts,
	}
}

func (s *Service) catalogCredential(ctx context.Context, principal storefront.Principal) (storefront.Credential, error) {
	return s.credentials.Credential(ctx, principal, s.opts.CatalogRegistration)
}

func (s *Service) feedbackCredential(ctx context.Context, principal storefront.Principal) (storefront.Credential, error) {
	return s.credentials.Credential(ctx, principal, s.opts.FeedbackRegistration)
}

// resolveAnchor confirms the product exists. Every aggregation and mutation
// starts here; nothing else is issued until it succeeds.
func (s *Service) resolveAnchor(ctx context.Context, principal storefront.Principal, id int64) (storefront.Product, error) {
	cred, err := s.catalogCredential(ctx, principal)
	if err != nil {
		return storefront.Product{}, err
	}
	product, found, err := s.catalog.FindProduct(ctx, cred, id)
	if err != nil {
		return storefront.Product{}, err
	}
	if !found {
		return storefront.Product{}, fmt.Errorf("product %d: %w", id, storefront.ErrNotFound)
	}
	return product, nil
}

func (s *Service) publish(ctx context.Context, eventType string, productID int64, principal storefront.Principal) {
	if err := s.publisher.Publish(ctx, storefront.Event{
		EventType: eventType,
		ProductID: productID,
		Subject:   principal.Subject,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		s.logger.Error("publish "+eventType+" event failed",
			"product_id", productID,
			"error", err,
		)
	}
}

func (s *Service) finish(operation string, result Result) Result {
	s.metrics.Outcomes.WithLabelValues(operation, string(result.Outcome)).Inc()
	if result.Outcome == OutcomeFailed {
		s.logger.Error("orchestration failed",
			"operation", operation,
			"error", result.Err,
		)
	}
	return result
}
