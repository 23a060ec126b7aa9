package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"product-storefront/internal/storefront"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProductPage_Ready(t *testing.T) {
	f := defaultFixture()
	f.reviews.findFn = func(_ context.Context, id int64) ([]storefront.Review, error) {
		return []storefront.Review{
			{ID: "b", ProductID: id, Rating: 5, Review: "second by id, first by backend"},
			{ID: "a", ProductID: id, Rating: 3, Review: "ok"},
		}, nil
	}
	f.favourites.findFn = func(_ context.Context, id int64) (storefront.FavouriteMark, bool, error) {
		return storefront.FavouriteMark{ID: "f", ProductID: id, UserID: "alice"}, true, nil
	}

	result := f.service(t).ProductPage(context.Background(), alice, 1)

	if result.Outcome != OutcomeReady {
		t.Fatalf("want outcome %q, got %q (err %v)", OutcomeReady, result.Outcome, result.Err)
	}
	if result.View.Product.ID != 1 || result.View.Product.Title != "T1" {
		t.Fatalf("unexpected product %+v", result.View.Product)
	}
	if !result.View.InFavourite {
		t.Fatal("want inFavourite=true")
	}
	if len(result.View.Reviews) != 2 || result.View.Reviews[0].ID != "b" || result.View.Reviews[1].ID != "a" {
		t.Fatalf("want reviews in backend order [b a], got %+v", result.View.Reviews)
	}
}

func TestProductPage_NotFoundShortCircuits(t *testing.T) {
	f := defaultFixture()
	f.catalog.findFn = func(context.Context, int64) (storefront.Product, bool, error) {
		return storefront.Product{}, false, nil
	}

	result := f.service(t).ProductPage(context.Background(), alice, 404)

	if result.Outcome != OutcomeNotFound {
		t.Fatalf("want outcome %q, got %q", OutcomeNotFound, result.Outcome)
	}
	if !errors.Is(result.Err, storefront.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", result.Err)
	}
	if n := f.reviews.finds.Load(); n != 0 {
		t.Fatalf("want 0 review calls, got %d", n)
	}
	if n := f.favourites.finds.Load(); n != 0 {
		t.Fatalf("want 0 favourite calls, got %d", n)
	}
}

func TestProductPage_NoFavouriteIsAbsence(t *testing.T) {
	f := defaultFixture()

	result := f.service(t).ProductPage(context.Background(), alice, 1)

	if result.Outcome != OutcomeReady {
		t.Fatalf("want outcome %q, got %q", OutcomeReady, result.Outcome)
	}
	if result.View.InFavourite {
		t.Fatal("want inFavourite=false")
	}
	if result.View.Reviews == nil {
		t.Fatal("want non-nil empty reviews")
	}
}

func TestProductPage_BranchesRunConcurrently(t *testing.T) {
	f := defaultFixture()
	reviewsStarted := make(chan struct{})
	favouriteStarted := make(chan struct{})

	// each branch waits for the other to start; sequential execution would time out
	await := func(ch <-chan struct{}) error {
		select {
		case <-ch:
			return nil
		case <-time.After(2 * time.Second):
			return fmt.Errorf("%w: sibling branch never started", storefront.ErrUnreachable)
		}
	}
	f.reviews.findFn = func(context.Context, int64) ([]storefront.Review, error) {
		close(reviewsStarted)
		return nil, await(favouriteStarted)
	}
	f.favourites.findFn = func(context.Context, int64) (storefront.FavouriteMark, bool, error) {
		close(favouriteStarted)
		return storefront.FavouriteMark{}, true, await(reviewsStarted)
	}

	result := f.service(t).ProductPage(context.Background(), alice, 1)

	if result.Outcome != OutcomeReady {
		t.Fatalf("want outcome %q, got %q (err %v)", OutcomeReady, result.Outcome, result.Err)
	}
	if f.reviews.finds.Load() != 1 || f.favourites.finds.Load() != 1 {
		t.Fatalf("want both branches invoked once, got reviews=%d favourites=%d", f.reviews.finds.Load(), f.favourites.finds.Load())
	}
}

func TestProductPage_Failures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		wantErr error
	}{
		{
			name: "anchor unreachable",
			setup: func(f *fixture) {
				f.catalog.findFn = func(context.Context, int64) (storefront.Product, bool, error) {
					return storefront.Product{}, false, storefront.ErrUnreachable
				}
			},
			wantErr: storefront.ErrUnreachable,
		},
		{
			name: "credential refused",
			setup: func(f *fixture) {
				f.creds.err = storefront.ErrUnauthorized
			},
			wantErr: storefront.ErrUnauthorized,
		},
		{
			name: "favourite branch unauthorized",
			setup: func(f *fixture) {
				f.favourites.findFn = func(context.Context, int64) (storefront.FavouriteMark, bool, error) {
					return storefront.FavouriteMark{}, false, storefront.ErrUnauthorized
				}
			},
			wantErr: storefront.ErrUnauthorized,
		},
		{
			name: "reviews branch unreachable",
			setup: func(f *fixture) {
				f.reviews.findFn = func(context.Context, int64) ([]storefront.Review, error) {
					return nil, storefront.ErrUnreachable
				}
			},
			wantErr: storefront.ErrUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFixture()
			tt.setup(f)

			result := f.service(t).ProductPage(context.Background(), alice, 1)

			if result.Outcome != OutcomeFailed {
				t.Fatalf("want outcome %q, got %q", OutcomeFailed, result.Outcome)
			}
			if !errors.Is(result.Err, tt.wantErr) {
				t.Fatalf("want error %v, got %v", tt.wantErr, result.Err)
			}
		})
	}
}

func TestCreateReview(t *testing.T) {
	t.Run("success redirects and publishes", func(t *testing.T) {
		f := defaultFixture()

		result := f.service(t).CreateReview(context.Background(), alice, 1, storefront.ReviewPayload{Rating: 5, Review: "great"})

		if result.Outcome != OutcomeRedirect || result.Location != "/customer/products/1" {
			t.Fatalf("want redirect to /customer/products/1, got %+v", result)
		}
		if len(f.publisher.events) != 1 || f.publisher.events[0].EventType != storefront.EventReviewCreated {
			t.Fatalf("want %q event, got %v", storefront.EventReviewCreated, f.publisher.events)
		}
		if f.publisher.events[0].Subject != "alice" {
			t.Fatalf("want subject alice, got %q", f.publisher.events[0].Subject)
		}
	})

	t.Run("rejection re-renders the view with payload and messages", func(t *testing.T) {
		f := defaultFixture()
		f.reviews.createFn = func(context.Context, int64, storefront.ReviewPayload) (storefront.Review, error) {
			return storefront.Review{}, fmt.Errorf("create review 1: %w", &storefront.RejectedError{Errors: []string{"rating too low"}})
		}
		f.favourites.findFn = func(context.Context, int64) (storefront.FavouriteMark, bool, error) {
			return storefront.FavouriteMark{}, true, nil
		}
		payload := storefront.ReviewPayload{Rating: -1, Review: "x"}

		result := f.service(t).CreateReview(context.Background(), alice, 1, payload)

		if result.Outcome != OutcomeRejected {
			t.Fatalf("want outcome %q, got %q (err %v)", OutcomeRejected, result.Outcome, result.Err)
		}
		if result.Payload != payload {
			t.Fatalf("want echoed payload %+v, got %+v", payload, result.Payload)
		}
		if len(result.Errors) != 1 || result.Errors[0] != "rating too low" {
			t.Fatalf("unexpected errors %v", result.Errors)
		}
		if result.View.Product.ID != 1 || !result.View.InFavourite {
			t.Fatalf("want rebuilt view for product 1 in favourites, got %+v", result.View)
		}
		if len(f.publisher.events) != 0 {
			t.Fatalf("want no events, got %v", f.publisher.events)
		}
	})

	t.Run("missing anchor never submits", func(t *testing.T) {
		f := defaultFixture()
		f.catalog.findFn = func(context.Context, int64) (storefront.Product, bool, error) {
			return storefront.Product{}, false, nil
		}

		result := f.service(t).CreateReview(context.Background(), alice, 404, storefront.ReviewPayload{Rating: 5})

		if result.Outcome != OutcomeNotFound {
			t.Fatalf("want outcome %q, got %q", OutcomeNotFound, result.Outcome)
		}
		if n := f.reviews.creates.Load(); n != 0 {
			t.Fatalf("want 0 create calls, got %d", n)
		}
	})

	t.Run("unauthorized is fatal", func(t *testing.T) {
		f := defaultFixture()
		f.reviews.createFn = func(context.Context, int64, storefront.ReviewPayload) (storefront.Review, error) {
			return storefront.Review{}, storefront.ErrUnauthorized
		}

		result := f.service(t).CreateReview(context.Background(), alice, 1, storefront.ReviewPayload{Rating: 5})

		if result.Outcome != OutcomeFailed || !errors.Is(result.Err, storefront.ErrUnauthorized) {
			t.Fatalf("want fatal unauthorized, got %+v", result)
		}
	})
}

func TestToggleFavourite(t *testing.T) {
	rejected := &storefront.RejectedError{Errors: []string{"already in favourites"}}

	tests := []struct {
		name        string
		remove      bool
		softFail    bool
		mutateErr   error
		wantOutcome Outcome
		wantEvent   string
		wantSoft    float64
	}{
		{
			name:        "add success",
			wantOutcome: OutcomeRedirect,
			wantEvent:   storefront.EventFavouriteAdded,
		},
		{
			name:        "remove success",
			remove:      true,
			wantOutcome: OutcomeRedirect,
			wantEvent:   storefront.EventFavouriteRemoved,
		},
		{
			name:        "add rejected soft-fails",
			softFail:    true,
			mutateErr:   rejected,
			wantOutcome: OutcomeRedirect,
			wantSoft:    1,
		},
		{
			name:        "remove rejected is never soft-failed",
			remove:      true,
			softFail:    true,
			mutateErr:   rejected,
			wantOutcome: OutcomeRejected,
		},
		{
			name:        "add rejected without soft-fail",
			mutateErr:   rejected,
			wantOutcome: OutcomeRejected,
		},
		{
			name:        "unauthorized is never soft-failed",
			softFail:    true,
			mutateErr:   storefront.ErrUnauthorized,
			wantOutcome: OutcomeFailed,
		},
		{
			name:        "unreachable is never soft-failed",
			remove:      true,
			softFail:    true,
			mutateErr:   storefront.ErrUnreachable,
			wantOutcome: OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := defaultFixture()
			f.opts.FavouriteSoftFail = tt.softFail
			f.favourites.addFn = func(_ context.Context, id int64) (storefront.FavouriteMark, error) {
				return storefront.FavouriteMark{ProductID: id}, tt.mutateErr
			}
			f.favourites.removeFn = func(context.Context, int64) error { return tt.mutateErr }
			svc := f.service(t)

			var result Result
			if tt.remove {
				result = svc.RemoveFavourite(context.Background(), alice, 1)
			} else {
				result = svc.AddFavourite(context.Background(), alice, 1)
			}

			if result.Outcome != tt.wantOutcome {
				t.Fatalf("want outcome %q, got %q (err %v)", tt.wantOutcome, result.Outcome, result.Err)
			}
			if tt.wantOutcome == OutcomeRedirect && result.Location != "/customer/products/1" {
				t.Fatalf("want redirect to /customer/products/1, got %q", result.Location)
			}
			if tt.wantOutcome == OutcomeRejected && (len(result.Errors) != 1 || result.View.Product.ID != 1) {
				t.Fatalf("want rejected view with messages, got %+v", result)
			}
			if got := testutil.ToFloat64(f.softFails); got != tt.wantSoft {
				t.Fatalf("want %v soft failures, got %v", tt.wantSoft, got)
			}
			if tt.wantEvent == "" && len(f.publisher.events) != 0 {
				t.Fatalf("want no events, got %v", f.publisher.events)
			}
			if tt.wantEvent != "" && (len(f.publisher.events) != 1 || f.publisher.events[0].EventType != tt.wantEvent) {
				t.Fatalf("want event %q, got %v", tt.wantEvent, f.publisher.events)
			}
		})
	}
}

func TestToggleFavourite_MissingAnchor(t *testing.T) {
	f := defaultFixture()
	f.catalog.findFn = func(context.Context, int64) (storefront.Product, bool, error) {
		return storefront.Product{}, false, nil
	}
	svc := f.service(t)

	if got := svc.AddFavourite(context.Background(), alice, 7).Outcome; got != OutcomeNotFound {
		t.Fatalf("want %q, got %q", OutcomeNotFound, got)
	}
	if got := svc.RemoveFavourite(context.Background(), alice, 7).Outcome; got != OutcomeNotFound {
		t.Fatalf("want %q, got %q", OutcomeNotFound, got)
	}
	if f.favourites.adds.Load() != 0 || f.favourites.removes.Load() != 0 {
		t.Fatal("mutation attempted against an unconfirmed product")
	}
}

func TestToggleFavourite_PublishFailStillRedirects(t *testing.T) {
	f := defaultFixture()
	f.publisher.err = errors.New("broker down")

	result := f.service(t).AddFavourite(context.Background(), alice, 1)

	if result.Outcome != OutcomeRedirect {
		t.Fatalf("want redirect despite publish failure, got %q", result.Outcome)
	}
}

func TestFavouriteProducts(t *testing.T) {
	f := defaultFixture()
	f.catalog.findAllFn = func(_ context.Context, filter string) ([]storefront.Product, error) {
		if filter != "soap" {
			t.Errorf("want filter soap, got %q", filter)
		}
		return []storefront.Product{
			{ID: 5, Title: "soap e"},
			{ID: 1, Title: "soap a"},
			{ID: 2, Title: "soap b"},
			{ID: 9, Title: "soap i"},
		}, nil
	}
	f.favourites.findAllFn = func(context.Context) ([]storefront.FavouriteMark, error) {
		return []storefront.FavouriteMark{{ProductID: 2}, {ProductID: 5}, {ProductID: 77}}, nil
	}

	result := f.service(t).FavouriteProducts(context.Background(), alice, "soap")

	if result.Outcome != OutcomeReady {
		t.Fatalf("want outcome %q, got %q (err %v)", OutcomeReady, result.Outcome, result.Err)
	}
	if result.Filter != "soap" {
		t.Fatalf("want filter echoed, got %q", result.Filter)
	}
	if len(result.Products) != 2 || result.Products[0].ID != 5 || result.Products[1].ID != 2 {
		t.Fatalf("want [5 2] in catalog order, got %+v", result.Products)
	}
}

func TestFavouriteProducts_BranchFailure(t *testing.T) {
	f := defaultFixture()
	f.favourites.findAllFn = func(context.Context) ([]storefront.FavouriteMark, error) {
		return nil, storefront.ErrUnreachable
	}

	result := f.service(t).FavouriteProducts(context.Background(), alice, "")

	if result.Outcome != OutcomeFailed || !errors.Is(result.Err, storefront.ErrUnreachable) {
		t.Fatalf("want fatal unreachable, got %+v", result)
	}
}

func TestProductsList(t *testing.T) {
	f := defaultFixture()
	f.catalog.findAllFn = func(context.Context, string) ([]storefront.Product, error) {
		return []storefront.Product{{ID: 1}, {ID: 2}}, nil
	}

	result := f.service(t).ProductsList(context.Background(), alice, "")

	if result.Outcome != OutcomeReady || len(result.Products) != 2 {
		t.Fatalf("want 2 products ready, got %+v", result)
	}
}

func TestIntersect(t *testing.T) {
	products := []storefront.Product{{ID: 3}, {ID: 1}, {ID: 2}}

	if got := intersect(products, nil); len(got) != 0 {
		t.Fatalf("want empty intersection, got %+v", got)
	}
	got := intersect(products, []storefront.FavouriteMark{{ProductID: 2}, {ProductID: 3}, {ProductID: 2}})
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 2 {
		t.Fatalf("want [3 2], got %+v", got)
	}
}
