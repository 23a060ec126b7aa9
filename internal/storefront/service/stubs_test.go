package service

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"product-storefront/internal/storefront"

	"github.com/prometheus/client_golang/prometheus"
)

type stubCatalog struct {
	findAllFn func(ctx context.Context, filter string) ([]storefront.Product, error)
	findFn    func(ctx context.Context, id int64) (storefront.Product, bool, error)
	createFn  func(ctx context.Context, payload storefront.ProductPayload) (storefront.Product, error)
	updateFn  func(ctx context.Context, id int64, payload storefront.ProductPayload) error
	deleteFn  func(ctx context.Context, id int64) error

	finds   atomic.Int32
	updates atomic.Int32
	deletes atomic.Int32
}

func (s *stubCatalog) FindAllProducts(ctx context.Context, _ storefront.Credential, filter string) ([]storefront.Product, error) {
	return s.findAllFn(ctx, filter)
}
func (s *stubCatalog) FindProduct(ctx context.Context, _ storefront.Credential, id int64) (storefront.Product, bool, error) {
	s.finds.Add(1)
	return s.findFn(ctx, id)
}
func (s *stubCatalog) CreateProduct(ctx context.Context, _ storefront.Credential, payload storefront.ProductPayload) (storefront.Product, error) {
	return s.createFn(ctx, payload)
}
func (s *stubCatalog) UpdateProduct(ctx context.Context, _ storefront.Credential, id int64, payload storefront.ProductPayload) error {
	s.updates.Add(1)
	return s.updateFn(ctx, id, payload)
}
func (s *stubCatalog) DeleteProduct(ctx context.Context, _ storefront.Credential, id int64) error {
	s.deletes.Add(1)
	return s.deleteFn(ctx, id)
}

type stubFavourites struct {
	findAllFn func(ctx context.Context) ([]storefront.FavouriteMark, error)
	findFn    func(ctx context.Context, productID int64) (storefront.FavouriteMark, bool, error)
	addFn     func(ctx context.Context, productID int64) (storefront.FavouriteMark, error)
	removeFn  func(ctx context.Context, productID int64) error

	finds   atomic.Int32
	adds    atomic.Int32
	removes atomic.Int32
}

func (s *stubFavourites) FindAllFavourites(ctx context.Context, _ storefront.Credential) ([]storefront.FavouriteMark, error) {
	return s.findAllFn(ctx)
}
func (s *stubFavourites) FindFavourite(ctx context.Context, _ storefront.Credential, productID int64) (storefront.FavouriteMark, bool, error) {
	s.finds.Add(1)
	return s.findFn(ctx, productID)
}
func (s *stubFavourites) AddFavourite(ctx context.Context, _ storefront.Credential, productID int64) (storefront.FavouriteMark, error) {
	s.adds.Add(1)
	return s.addFn(ctx, productID)
}
func (s *stubFavourites) RemoveFavourite(ctx context.Context, _ storefront.Credential, productID int64) error {
	s.removes.Add(1)
	return s.removeFn(ctx, productID)
}

type stubReviews struct {
	findFn   func(ctx context.Context, productID int64) ([]storefront.Review, error)
	createFn func(ctx context.Context, productID int64, payload storefront.ReviewPayload) (storefront.Review, error)

	finds   atomic.Int32
	creates atomic.Int32
}

func (s *stubReviews) FindReviews(ctx context.Context, _ storefront.Credential, productID int64) ([]storefront.Review, error) {
	s.finds.Add(1)
	return s.findFn(ctx, productID)
}
func (s *stubReviews) CreateReview(ctx context.Context, _ storefront.Credential, productID int64, payload storefront.ReviewPayload) (storefront.Review, error) {
	s.creates.Add(1)
	return s.createFn(ctx, productID, payload)
}

type stubCredentials struct {
	err error
}

func (s *stubCredentials) Credential(_ context.Context, p storefront.Principal, registration string) (storefront.Credential, error) {
	if s.err != nil {
		return storefront.Credential{}, s.err
	}
	return storefront.Credential{Token: "tok", Principal: p.Subject, Registration: registration}, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []storefront.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event storefront.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

type fixture struct {
	catalog    *stubCatalog
	favourites *stubFavourites
	reviews    *stubReviews
	creds      *stubCredentials
	publisher  *mockPublisher
	softFails  prometheus.Counter
	opts       Options
}

var alice = storefront.Principal{Subject: "alice", Token: "raw"}

func defaultFixture() *fixture {
	return &fixture{
		catalog: &stubCatalog{
			findAllFn: func(context.Context, string) ([]storefront.Product, error) { return nil, nil },
			findFn: func(_ context.Context, id int64) (storefront.Product, bool, error) {
				return storefront.Product{ID: id, Title: "T1"}, true, nil
			},
			createFn: func(_ context.Context, payload storefront.ProductPayload) (storefront.Product, error) {
				return storefront.Product{ID: 10, Title: payload.Title, Details: payload.Details}, nil
			},
			updateFn: func(context.Context, int64, storefront.ProductPayload) error { return nil },
			deleteFn: func(context.Context, int64) error { return nil },
		},
		favourites: &stubFavourites{
			findAllFn: func(context.Context) ([]storefront.FavouriteMark, error) { return nil, nil },
			findFn: func(context.Context, int64) (storefront.FavouriteMark, bool, error) {
				return storefront.FavouriteMark{}, false, nil
			},
			addFn: func(_ context.Context, id int64) (storefront.FavouriteMark, error) {
				return storefront.FavouriteMark{ID: "f1", ProductID: id}, nil
			},
			removeFn: func(context.Context, int64) error { return nil },
		},
		reviews: &stubReviews{
			findFn: func(context.Context, int64) ([]storefront.Review, error) { return nil, nil },
			createFn: func(_ context.Context, id int64, p storefront.ReviewPayload) (storefront.Review, error) {
				return storefront.Review{ID: "r1", ProductID: id, Rating: p.Rating, Review: p.Review}, nil
			},
		},
		creds:     &stubCredentials{},
		publisher: &mockPublisher{},
		softFails: prometheus.NewCounter(prometheus.CounterOpts{Name: "t_soft_failures", Help: "t"}),
		opts: Options{
			CatalogRegistration:  "catalog",
			FeedbackRegistration: "feedback",
			FavouriteSoftFail:    true,
		},
	}
}

func (f *fixture) service(t *testing.T) *Service {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return New(
		Clients{Catalog: f.catalog, Favourites: f.favourites, Reviews: f.reviews},
		f.creds,
		f.publisher,
		logger,
		Metrics{
			Outcomes:     prometheus.NewCounterVec(prometheus.CounterOpts{Name: "t_outcomes", Help: "t"}, []string{"operation", "outcome"}),
			SoftFailures: f.softFails,
		},
		f.opts,
	)
}
