package http

import (
	"context"
	"net/http"
	"strconv"

	"product-storefront/internal/storefront"
	"product-storefront/internal/storefront/service"

	"github.com/gin-gonic/gin"
)

const filterQuery = "filter"

type StorefrontService interface {
	ProductPage(ctx context.Context, principal storefront.Principal, id int64) service.Result
	AddFavourite(ctx context.Context, principal storefront.Principal, id int64) service.Result
	RemoveFavourite(ctx context.Context, principal storefront.Principal, id int64) service.Result
	CreateReview(ctx context.Context, principal storefront.Principal, id int64, payload storefront.ReviewPayload) service.Result
	ProductsList(ctx context.Context, principal storefront.Principal, filter string) service.Result
	FavouriteProducts(ctx context.Context, principal storefront.Principal, filter string) service.Result

	CatalogList(ctx context.Context, principal storefront.Principal, filter string) service.Result
	CatalogProduct(ctx context.Context, principal storefront.Principal, id int64) service.Result
	CreateProduct(ctx context.Context, principal storefront.Principal, payload storefront.ProductPayload) service.Result
	UpdateProduct(ctx context.Context, principal storefront.Principal, id int64, payload storefront.ProductPayload) service.Result
	DeleteProduct(ctx context.Context, principal storefront.Principal, id int64) service.Result
}

type Handler struct {
	service StorefrontService
}

func NewHandler(svc StorefrontService) *Handler {
	return &Handler{service: svc}
}

// productID parses the :id path segment, writing a 400 when it is not a
// positive integer.
func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid product id"})
		return 0, false
	}
	return id, true
}

func bindPayload(c *gin.Context, payload any) bool {
	if err := c.ShouldBind(payload); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
