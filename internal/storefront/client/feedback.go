package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"product-storefront/internal/storefront"
)

const (
	favouritesPath = "/feedback-api/favourite-products"
	reviewsPath    = "/feedback-api/product-reviews"
	byProductID    = "/by-product-id/"
)

// Favourites talks to the feedback service on behalf of the credential's
// principal; the service scopes every favourite to that user.
type Favourites struct {
	transport transport
}

func NewFavourites(cfg Config) *Favourites {
	return &Favourites{transport: newTransport(cfg)}
}

func (f *Favourites) FindAllFavourites(ctx context.Context, cred storefront.Credential) ([]storefront.FavouriteMark, error) {
	var list []storefront.FavouriteMark
	found, err := readResult(f.transport.do(ctx, cred, request{
		method: http.MethodGet,
		path:   favouritesPath,
	}, &list))
	if err != nil {
		return nil, fmt.Errorf("find favourites: %w", err)
	}
	if !found || list == nil {
		return []storefront.FavouriteMark{}, nil
	}
	return list, nil
}

// FindFavourite reports found=false when the user has not favourited the
// product. The feedback service answers that with either 404 or an empty 200.
func (f *Favourites) FindFavourite(ctx context.Context, cred storefront.Credential, productID int64) (storefront.FavouriteMark, bool, error) {
	var mark storefront.FavouriteMark
	found, err := readResult(f.transport.do(ctx, cred, request{
		method: http.MethodGet,
		path:   favouritesPath + byProductID + strconv.FormatInt(productID, 10),
	}, &mark))
	if err != nil {
		return storefront.FavouriteMark{}, false, fmt.Errorf("find favourite %d: %w", productID, err)
	}
	if !found {
		return storefront.FavouriteMark{}, false, nil
	}
	return mark, true, nil
}

type newFavouritePayload struct {
	ProductID int64 `json:"productId"`
}

func (f *Favourites) AddFavourite(ctx context.Context, cred storefront.Credential, productID int64) (storefront.FavouriteMark, error) {
	var mark storefront.FavouriteMark
	err := f.transport.do(ctx, cred, request{
		method: http.MethodPost,
		path:   favouritesPath,
		body:   newFavouritePayload{ProductID: productID},
	}, &mark)
	if err := writeResult(err, fmt.Sprintf("add favourite %d", productID)); err != nil {
		return storefront.FavouriteMark{}, err
	}
	return mark, nil
}

func (f *Favourites) RemoveFavourite(ctx context.Context, cred storefront.Credential, productID int64) error {
	err := f.transport.do(ctx, cred, request{
		method: http.MethodDelete,
		path:   favouritesPath + byProductID + strconv.FormatInt(productID, 10),
	}, nil)
	return writeResult(err, fmt.Sprintf("remove favourite %d", productID))
}

type Reviews struct {
	transport transport
}

func NewReviews(cfg Config) *Reviews {
	return &Reviews{transport: newTransport(cfg)}
}

// FindReviews returns reviews in the order the feedback service sent them.
func (r *Reviews) FindReviews(ctx context.Context, cred storefront.Credential, productID int64) ([]storefront.Review, error) {
	var list []storefront.Review
	found, err := readResult(r.transport.do(ctx, cred, request{
		method: http.MethodGet,
		path:   reviewsPath + byProductID + strconv.FormatInt(productID, 10),
	}, &list))
	if err != nil {
		return nil, fmt.Errorf("find reviews %d: %w", productID, err)
	}
	if !found || list == nil {
		return []storefront.Review{}, nil
	}
	return list, nil
}

type newReviewPayload struct {
	ProductID int64  `json:"productId"`
	Rating    int    `json:"rating"`
	Review    string `json:"review"`
}

func (r *Reviews) CreateReview(ctx context.Context, cred storefront.Credential, productID int64, payload storefront.ReviewPayload) (storefront.Review, error) {
	var review storefront.Review
	err := r.transport.do(ctx, cred, request{
		method: http.MethodPost,
		path:   reviewsPath,
		body: newReviewPayload{
			ProductID: productID,
			Rating:    payload.Rating,
			Review:    payload.Review,
		},
	}, &review)
	if err := writeResult(err, fmt.Sprintf("create review %d", productID)); err != nil {
		return storefront.Review{}, err
	}
	return review, nil
}
