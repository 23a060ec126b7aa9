package http

import (
	"product-storefront/internal/storefront"

	"github.com/gin-gonic/gin"
)

// CatalogList godoc
// @Summary      List products for a manager
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        filter  query     string  false  "Title filter"
// @Success      200     {object}  pageResponse
// @Failure      401     {object}  pageResponse
// @Failure      502     {object}  pageResponse
// @Router       /catalog/products/list [get]
func (h *Handler) CatalogList(c *gin.Context) {
	result := h.service.CatalogList(c.Request.Context(), principalFrom(c), c.Query(filterQuery))
	render(c, MapResult(result, catalogListPage))
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         catalog
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      storefront.ProductPayload  true  "Product"
// @Success      303
// @Failure      400   {object}  pageResponse
// @Failure      401   {object}  pageResponse
// @Failure      502   {object}  pageResponse
// @Router       /catalog/products/create [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var payload storefront.ProductPayload
	if !bindPayload(c, &payload) {
		return
	}
	result := h.service.CreateProduct(c.Request.Context(), principalFrom(c), payload)
	render(c, MapResult(result, catalogCreatePage))
}

// CatalogProduct godoc
// @Summary      Product page for a manager
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      200  {object}  pageResponse
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  pageResponse
// @Failure      502  {object}  pageResponse
// @Router       /catalog/products/{id} [get]
func (h *Handler) CatalogProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	result := h.service.CatalogProduct(c.Request.Context(), principalFrom(c), id)
	render(c, MapResult(result, catalogProductPage))
}

// UpdateProduct godoc
// @Summary      Edit a product
// @Tags         catalog
// @Accept       json,x-www-form-urlencoded
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                        true  "Product ID"
// @Param        body  body      storefront.ProductPayload  true  "Product"
// @Success      303
// @Failure      400   {object}  pageResponse
// @Failure      404   {object}  pageResponse
// @Failure      502   {object}  pageResponse
// @Router       /catalog/products/{id}/edit [post]
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var payload storefront.ProductPayload
	if !bindPayload(c, &payload) {
		return
	}
	result := h.service.UpdateProduct(c.Request.Context(), principalFrom(c), id, payload)
	render(c, MapResult(result, catalogEditPage))
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Product ID"
// @Success      303
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  pageResponse
// @Failure      502  {object}  pageResponse
// @Router       /catalog/products/{id}/delete [post]
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	result := h.service.DeleteProduct(c.Request.Context(), principalFrom(c), id)
	render(c, MapResult(result, catalogProductPage))
}
