package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"product-storefront/internal/storefront"
)

const catalogProductsPath = "/catalog-api/products"

// Catalog reads and writes products of the catalog service. It is stateless
// and safe for concurrent use.
type Catalog struct {
	transport transport
}

func NewCatalog(cfg Config) *Catalog {
	return &Catalog{transport: newTransport(cfg)}
}

func (c *Catalog) FindAllProducts(ctx context.Context, cred storefront.Credential, filter string) ([]storefront.Product, error) {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}

	var list []storefront.Product
	found, err := readResult(c.transport.do(ctx, cred, request{
		method: http.MethodGet,
		path:   catalogProductsPath,
		query:  query,
	}, &list))
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	if !found || list == nil {
		return []storefront.Product{}, nil
	}
	return list, nil
}

// FindProduct reports found=false when the catalog has no such product.
func (c *Catalog) FindProduct(ctx context.Context, cred storefront.Credential, id int64) (storefront.Product, bool, error) {
	var product storefront.Product
	found, err := readResult(c.transport.do(ctx, cred, request{
		method: http.MethodGet,
		path:   productPath(id),
	}, &product))
	if err != nil {
		return storefront.Product{}, false, fmt.Errorf("find product %d: %w", id, err)
	}
	if !found {
		return storefront.Product{}, false, nil
	}
	return product, true, nil
}

func (c *Catalog) CreateProduct(ctx context.Context, cred storefront.Credential, payload storefront.ProductPayload) (storefront.Product, error) {
	var product storefront.Product
	err := c.transport.do(ctx, cred, request{
		method: http.MethodPost,
		path:   catalogProductsPath,
		body:   payload,
	}, &product)
	if err := writeResult(err, "create product"); err != nil {
		return storefront.Product{}, err
	}
	if product.ID == 0 {
		return storefront.Product{}, fmt.Errorf("%w: create product: response carried no product id", storefront.ErrUnreachable)
	}
	return product, nil
}

func (c *Catalog) UpdateProduct(ctx context.Context, cred storefront.Credential, id int64, payload storefront.ProductPayload) error {
	err := c.transport.do(ctx, cred, request{
		method: http.MethodPatch,
		path:   productPath(id),
		body:   payload,
	}, nil)
	return writeResult(err, fmt.Sprintf("update product %d", id))
}

func (c *Catalog) DeleteProduct(ctx context.Context, cred storefront.Credential, id int64) error {
	err := c.transport.do(ctx, cred, request{
		method: http.MethodDelete,
		path:   productPath(id),
	}, nil)
	return writeResult(err, fmt.Sprintf("delete product %d", id))
}

func productPath(id int64) string {
	return catalogProductsPath + "/" + strconv.FormatInt(id, 10)
}
