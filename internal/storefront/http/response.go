package http

import (
	"errors"
	"net/http"

	"product-storefront/internal/storefront"
	"product-storefront/internal/storefront/service"

	"github.com/gin-gonic/gin"
)

const (
	viewCustomerProduct    = "customer/products/product"
	viewCustomerList       = "customer/products/list"
	viewCustomerFavourites = "customer/products/favourites"
	viewCatalogList        = "catalog/products/list"
	viewCatalogProduct     = "catalog/products/product"
	viewCatalogNew         = "catalog/products/new_product"
	viewCatalogEdit        = "catalog/products/edit"

	viewNotFound     = "errors/404"
	viewUnauthorized = "errors/401"
	viewUpstream     = "errors/502"
)

type pageResponse struct {
	View  string `json:"view" example:"customer/products/product"`
	Model gin.H  `json:"model" swaggertype:"object"`
}

type errorResponse struct {
	Error string `json:"error" example:"invalid product id"`
}

// Page is the rendered form of one orchestration result: either a view with
// its model and status, or a redirect.
type Page struct {
	Status   int
	View     string
	Model    gin.H
	Location string
}

// pageSpec names the views an operation renders and how its model is built.
type pageSpec struct {
	view         string
	rejectedView string
	model        func(service.Result) gin.H
}

// MapResult translates an orchestrator outcome into a page. Downstream error
// details stay in the logs; only generic messages reach the page.
func MapResult(result service.Result, spec pageSpec) Page {
	switch result.Outcome {
	case service.OutcomeReady:
		return Page{Status: http.StatusOK, View: spec.view, Model: spec.model(result)}
	case service.OutcomeRedirect:
		return Page{Status: http.StatusSeeOther, Location: result.Location}
	case service.OutcomeRejected:
		model := spec.model(result)
		model["payload"] = result.Payload
		model["errors"] = result.Errors
		view := spec.rejectedView
		if view == "" {
			view = spec.view
		}
		return Page{Status: http.StatusBadRequest, View: view, Model: model}
	case service.OutcomeNotFound:
		return errorPage(http.StatusNotFound, viewNotFound, storefront.ErrNotFound.Error())
	}
	return failurePage(result.Err)
}

func failurePage(err error) Page {
	if errors.Is(err, storefront.ErrUnauthorized) {
		return errorPage(http.StatusUnauthorized, viewUnauthorized, "unauthorized")
	}
	return errorPage(http.StatusBadGateway, viewUpstream, "upstream service unavailable")
}

func errorPage(status int, view, message string) Page {
	return Page{Status: status, View: view, Model: gin.H{"error": message}}
}

func render(c *gin.Context, page Page) {
	if page.Location != "" {
		c.Redirect(page.Status, page.Location)
		return
	}
	c.JSON(page.Status, pageResponse{View: page.View, Model: page.Model})
}

func productViewModel(r service.Result) gin.H {
	return gin.H{
		"product":     r.View.Product,
		"reviews":     r.View.Reviews,
		"inFavourite": r.View.InFavourite,
	}
}

func productsModel(r service.Result) gin.H {
	products := r.Products
	if products == nil {
		products = []storefront.Product{}
	}
	return gin.H{"products": products, "filter": r.Filter}
}

func catalogProductModel(r service.Result) gin.H {
	return gin.H{"product": r.Product}
}

func emptyModel(service.Result) gin.H {
	return gin.H{}
}

var (
	customerProductPage    = pageSpec{view: viewCustomerProduct, rejectedView: viewCustomerProduct, model: productViewModel}
	customerListPage       = pageSpec{view: viewCustomerList, model: productsModel}
	customerFavouritesPage = pageSpec{view: viewCustomerFavourites, model: productsModel}
	catalogListPage        = pageSpec{view: viewCatalogList, model: productsModel}
	catalogProductPage     = pageSpec{view: viewCatalogProduct, model: catalogProductModel}
	catalogCreatePage      = pageSpec{view: viewCatalogNew, rejectedView: viewCatalogNew, model: emptyModel}
	catalogEditPage        = pageSpec{view: viewCatalogEdit, rejectedView: viewCatalogEdit, model: catalogProductModel}
)
