package service

import (
	"context"
	"fmt"

	"product-storefront/internal/storefront"
)

const (
	opCatalogList   = "catalog_list"
	opCatalogPage   = "catalog_page"
	opCreateProduct = "create_product"
	opUpdateProduct = "update_product"
	opDeleteProduct = "delete_product"

	catalogListLocation = "/catalog/products/list"
)

func catalogProductLocation(id int64) string {
	return fmt.Sprintf("/catalog/products/%d", id)
}

func (s *Service) CatalogList(ctx context.Context, principal storefront.Principal, filter string) Result {
	cred, err := s.catalogCredential(ctx, principal)
	if err != nil {
		return s.finish(opCatalogList, failure(err))
	}
	products, err := s.catalog.FindAllProducts(ctx, cred, filter)
	if err != nil {
		return s.finish(opCatalogList, failure(err))
	}
	return s.finish(opCatalogList, Result{Outcome: OutcomeReady, Products: products, Filter: filter})
}

func (s *Service) CatalogProduct(ctx context.Context, principal storefront.Principal, id int64) Result {
	product, err := s.resolveAnchor(ctx, principal, id)
	if err != nil {
		return s.finish(opCatalogPage, failure(err))
	}
	return s.finish(opCatalogPage, Result{Outcome: OutcomeReady, Product: product})
}

func (s *Service) CreateProduct(ctx context.Context, principal storefront.Principal, payload storefront.ProductPayload) Result {
	cred, err := s.catalogCredential(ctx, principal)
	if err != nil {
		return s.finish(opCreateProduct, failure(err))
	}

	product, err := s.catalog.CreateProduct(ctx, cred, payload)
	if err != nil {
		if rejected, ok := storefront.AsRejected(err); ok {
			return s.finish(opCreateProduct, Result{Outcome: OutcomeRejected, Payload: payload, Errors: rejected.Errors})
		}
		return s.finish(opCreateProduct, failure(err))
	}

	s.publish(ctx, storefront.EventProductCreated, product.ID, principal)
	return s.finish(opCreateProduct, redirect(catalogProductLocation(product.ID)))
}

func (s *Service) UpdateProduct(ctx context.Context, principal storefront.Principal, id int64, payload storefront.ProductPayload) Result {
	product, err := s.resolveAnchor(ctx, principal, id)
	if err != nil {
		return s.finish(opUpdateProduct, failure(err))
	}

	cred, err := s.catalogCredential(ctx, principal)
	if err != nil {
		return s.finish(opUpdateProduct, failure(err))
	}

	if err := s.catalog.UpdateProduct(ctx, cred, product.ID, payload); err != nil {
		if rejected, ok := storefront.AsRejected(err); ok {
			return s.finish(opUpdateProduct, Result{
				Outcome: OutcomeRejected,
				Product: product,
				Payload: payload,
				Errors:  rejected.Errors,
			})
		}
		return s.finish(opUpdateProduct, failure(err))
	}

	s.publish(ctx, storefront.EventProductUpdated, product.ID, principal)
	return s.finish(opUpdateProduct, redirect(catalogProductLocation(product.ID)))
}

func (s *Service) DeleteProduct(ctx context.Context, principal storefront.Principal, id int64) Result {
	product, err := s.resolveAnchor(ctx, principal, id)
	if err != nil {
		return s.finish(opDeleteProduct, failure(err))
	}

	cred, err := s.catalogCredential(ctx, principal)
	if err != nil {
		return s.finish(opDeleteProduct, failure(err))
	}

	if err := s.catalog.DeleteProduct(ctx, cred, product.ID); err != nil {
		return s.finish(opDeleteProduct, failure(err))
	}

	s.publish(ctx, storefront.EventProductDeleted, product.ID, principal)
	return s.finish(opDeleteProduct, redirect(catalogListLocation))
}
