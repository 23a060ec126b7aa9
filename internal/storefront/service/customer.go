package service

import (
	"context"
	"fmt"

	"product-storefront/internal/storefront"

	"golang.org/x/sync/errgroup"
)

const (
	opProductPage       = "product_page"
	opAddFavourite      = "add_favourite"
	opRemoveFavourite   = "remove_favourite"
	opCreateReview      = "create_review"
	opProductsList      = "products_list"
	opFavouriteProducts = "favourite_products"
)

func customerProductLocation(id int64) string {
	return fmt.Sprintf("/customer/products/%d", id)
}

// ProductPage resolves the anchor product, then loads its reviews and the
// caller's favourite mark concurrently and merges them into one view.
func (s *Service) ProductPage(ctx context.Context, principal storefront.Principal, id int64) Result {
	product, err := s.resolveAnchor(ctx, principal, id)
	if err != nil {
		return s.finish(opProductPage, failure(err))
	}

	view, err := s.fanOut(ctx, principal, product)
	if err != nil {
		return s.finish(opProductPage, failure(err))
	}
	return s.finish(opProductPage, Result{Outcome: OutcomeReady, View: view})
}

// fanOut runs the reviews and favourite branches for a resolved product. Each
// branch owns its own result variable, so the merge does not depend on which
// finishes first. A fatal error in one branch cancels the other.
func (s *Service) fanOut(ctx context.Context, principal storefront.Principal, product storefront.Product) (storefront.ProductView, error) {
	var (
		reviews     []storefront.Review
		inFavourite bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cred, err := s.feedbackCredential(gctx, principal)
		if err != nil {
			return err
		}
		list, err := s.reviews.FindReviews(gctx, cred, product.ID)
		if err != nil {
			return err
		}
		reviews = list
		return nil
	})
	g.Go(func() error {
		cred, err := s.feedbackCredential(gctx, principal)
		if err != nil {
			return err
		}
		_, found, err := s.favourites.FindFavourite(gctx, cred, product.ID)
		if err != nil {
			return err
		}
		inFavourite = found
		return nil
	})
	if err := g.Wait(); err != nil {
		return storefront.ProductView{}, err
	}

	if reviews == nil {
		reviews = []storefront.Review{}
	}
	return storefront.ProductView{
		Product:     product,
		Reviews:     reviews,
		InFavourite: inFavourite,
	}, nil
}

func (s *Service) AddFavourite(ctx context.Context, principal storefront.Principal, id int64) Result {
	return s.toggleFavourite(ctx, principal, id, opAddFavourite, storefront.EventFavouriteAdded, s.opts.FavouriteSoftFail,
		func(ctx context.Context, cred storefront.Credential, productID int64) error {
			_, err := s.favourites.AddFavourite(ctx, cred, productID)
			return err
		})
}

func (s *Service) RemoveFavourite(ctx context.Context, principal storefront.Principal, id int64) Result {
	return s.toggleFavourite(ctx, principal, id, opRemoveFavourite, storefront.EventFavouriteRemoved, false,
		s.favourites.RemoveFavourite)
}

func (s *Service) toggleFavourite(
	ctx context.Context,
	principal storefront.Principal,
	id int64,
	operation, eventType string,
	softFail bool,
	mutate func(ctx context.Context, cred storefront.Credential, productID int64) error,
) Result {
	product, err := s.resolveAnchor(ctx, principal, id)
	if err != nil {
		return s.finish(operation, failure(err))
	}

	cred, err := s.feedbackCredential(ctx, principal)
	if err != nil {
		return s.finish(operation, failure(err))
	}

	err = mutate(ctx, cred, product.ID)
	if err == nil {
		s.publish(ctx, eventType, product.ID, principal)
		return s.finish(operation, redirect(customerProductLocation(product.ID)))
	}

	rejected, ok := storefront.AsRejected(err)
	if !ok {
		return s.finish(operation, failure(err))
	}

	if softFail {
		s.metrics.SoftFailures.Inc()
		s.logger.Error("favourite change rejected",
			"operation", operation,
			"product_id", product.ID,
			"errors", rejected.Errors,
		)
		return s.finish(operation, redirect(customerProductLocation(product.ID)))
	}
	return s.finish(operation, s.rejectedView(ctx, principal, product, nil, rejected))
}

// CreateReview resolves the anchor and submits the review. A rejection
// re-renders the product view with the submitted payload and the messages.
func (s *Service) CreateReview(ctx context.Context, principal storefront.Principal, id int64, payload storefront.ReviewPayload) Result {
	product, err := s.resolveAnchor(ctx, principal, id)
	if err != nil {
		return s.finish(opCreateReview, failure(err))
	}

	cred, err := s.feedbackCredential(ctx, principal)
	if err != nil {
		return s.finish(opCreateReview, failure(err))
	}

	_, err = s.reviews.CreateReview(ctx, cred, product.ID, payload)
	if err == nil {
		s.publish(ctx, storefront.EventReviewCreated, product.ID, principal)
		return s.finish(opCreateReview, redirect(customerProductLocation(product.ID)))
	}

	rejected, ok := storefront.AsRejected(err)
	if !ok {
		return s.finish(opCreateReview, failure(err))
	}
	return s.finish(opCreateReview, s.rejectedView(ctx, principal, product, payload, rejected))
}

func (s *Service) rejectedView(ctx context.Context, principal storefront.Principal, product storefront.Product, payload any, rejected *storefront.RejectedError) Result {
	view, err := s.fanOut(ctx, principal, product)
	if err != nil {
		return failure(err)
	}
	return Result{
		Outcome: OutcomeRejected,
		View:    view,
		Payload: payload,
		Errors:  rejected.Errors,
	}
}

func (s *Service) ProductsList(ctx context.Context, principal storefront.Principal, filter string) Result {
	cred, err := s.catalogCredential(ctx, principal)
	if err != nil {
		return s.finish(opProductsList, failure(err))
	}
	products, err := s.catalog.FindAllProducts(ctx, cred, filter)
	if err != nil {
		return s.finish(opProductsList, failure(err))
	}
	return s.finish(opProductsList, Result{Outcome: OutcomeReady, Products: products, Filter: filter})
}

// FavouriteProducts lists the filtered catalog restricted to the caller's
// favourites, keeping the catalog's order.
func (s *Service) FavouriteProducts(ctx context.Context, principal storefront.Principal, filter string) Result {
	var (
		products []storefront.Product
		marks    []storefront.FavouriteMark
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cred, err := s.catalogCredential(gctx, principal)
		if err != nil {
			return err
		}
		list, err := s.catalog.FindAllProducts(gctx, cred, filter)
		if err != nil {
			return err
		}
		products = list
		return nil
	})
	g.Go(func() error {
		cred, err := s.feedbackCredential(gctx, principal)
		if err != nil {
			return err
		}
		list, err := s.favourites.FindAllFavourites(gctx, cred)
		if err != nil {
			return err
		}
		marks = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return s.finish(opFavouriteProducts, failure(err))
	}

	return s.finish(opFavouriteProducts, Result{
		Outcome:  OutcomeReady,
		Products: intersect(products, marks),
		Filter:   filter,
	})
}

func intersect(products []storefront.Product, marks []storefront.FavouriteMark) []storefront.Product {
	favourite := make(map[int64]struct{}, len(marks))
	for _, mark := range marks {
		favourite[mark.ProductID] = struct{}{}
	}

	out := make([]storefront.Product, 0, len(products))
	for _, product := range products {
		if _, ok := favourite[product.ID]; ok {
			out = append(out, product)
		}
	}
	return out
}
