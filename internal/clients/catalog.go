package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ha3uno/omiseyasan/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = errors.New("product not found")

type CatalogClient struct {
	c   *Client
	sfg singleflight.Group // collapses concurrent lookups of the same product
}

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

func (cc *CatalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	key := strconv.FormatInt(id, 10)
	v, err, _ := cc.sfg.Do(key, func() (interface{}, error) {
		resp, err := cc.c.Do(ctx, http.MethodGet, "/api/products/"+key, "", nil, nil)
		if err != nil {
			return nil, fmt.Errorf("get product %d: %w", id, err)
		}
		defer drain(resp)

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrProductNotFound
		}
		if !isSuccess(resp.StatusCode) {
			return nil, transportError(resp)
		}

		var p domain.Product
		if err := decodeJSON(resp, &p); err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return nil, err
	}

	// callers sharing a flight must not share the pointer
	p := *v.(*domain.Product)
	return &p, nil
}

// ListProducts returns the catalog, optionally filtered by category.
func (cc *CatalogClient) ListProducts(ctx context.Context, category string) ([]domain.Product, error) {
	var rawQuery string
	if category != "" {
		rawQuery = url.Values{"category": {category}}.Encode()
	}

	resp, err := cc.c.Do(ctx, http.MethodGet, "/api/products", rawQuery, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, transportError(resp)
	}

	products := []domain.Product{}
	if err := decodeJSON(resp, &products); err != nil {
		return nil, err
	}
	return products, nil
}
