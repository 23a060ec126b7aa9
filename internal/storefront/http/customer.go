package http

import (
	"product-storefront/internal/storefront"

	"github.com/gin-gonic/gin"
)

// ProductsList godoc
// @Summary      List catalog products for a customer
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "Title filter"
// @Success      200     {object}  pageResponse
// @Failure      401     {object}  pageResponse
// @Failure      429     {object}  errorResponse
// @Failure      502     {object}  pageResponse
// @Router       /customer/products/list [get]
func (h *Handler) ProductsList(c *gin.Context) {
	result := h.service.ProductsList(c.Request.Context(), principalFrom(c), c.Query(filterQuery))
	render(c, MapResult(result, customerListPage))
}

// FavouriteProducts godoc
// @Summary      List the caller's favourite products
// @Description  Filtered catalog restricted to the caller's favourites, in catalog order.
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "Title filter"
// @Success      200     {object}  pageResponse
// @Failure      401     {object}  pageResponse
// @Failure      502     {object}  pageResponse
// @Router       /customer/products/favourites [get]
func (h *Handler) FavouriteProducts(c *gin.Context) {
	result := h.service.FavouriteProducts(c.Request.Context(), principalFrom(c), c.Query(filterQuery))
	render(c, MapResult(result, customerFavouritesPage))
}

// ProductPage godoc
// @Summary      Product detail with reviews and favourite flag
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  pageResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  pageResponse
// @Failure      404  {object}  pageResponse
// @Failure      502  {object}  pageResponse
// @Router       /customer/products/{id} [get]
func (h *Handler) ProductPage(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	result := h.service.ProductPage(c.Request.Context(), principalFrom(c), id)
	render(c, MapResult(result, customerProductPage))
}

// AddFavourite godoc
// @Summary      Add a product to the caller's favourites
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      303
// @Failure      400  {object}  pageResponse
// @Failure      404  {object}  pageResponse
// @Failure      502  {object}  pageResponse
// @Router       /customer/products/{id}/add-to-favourites [post]
func (h *Handler) AddFavourite(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	result := h.service.AddFavourite(c.Request.Context(), principalFrom(c), id)
	render(c, MapResult(result, customerProductPage))
}

// RemoveFavourite godoc
// @Summary      Remove a product from the caller's favourites
// @Tags         customer
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      303
// @Failure      400  {object}  pageResponse
// @Failure      404  {object}  pageResponse
// @Failure      502  {object}  pageResponse
// @Router       /customer/products/{id}/remove-from-favourites [post]
func (h *Handler) RemoveFavourite(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	result := h.service.RemoveFavourite(c.Request.Context(), principalFrom(c), id)
	render(c, MapResult(result, customerProductPage))
}

// CreateReview godoc
// @Summary      Review a product
// @Description  On rejection the product page is re-rendered with the submitted payload and messages.
// @Tags         customer
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Product ID"
// @Param        body  body      storefront.ReviewPayload  true  "Review"
// @Success      303
// @Failure      400   {object}  pageResponse
// @Failure      404   {object}  pageResponse
// @Failure      502   {object}  pageResponse
// @Router       /customer/products/{id}/create-review [post]
func (h *Handler) CreateReview(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var payload storefront.ReviewPayload
	if !bindPayload(c, &payload) {
		return
	}
	result := h.service.CreateReview(c.Request.Context(), principalFrom(c), id, payload)
	render(c, MapResult(result, customerProductPage))
}
