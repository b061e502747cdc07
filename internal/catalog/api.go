// ABOUTME: Typed calls for the /api item endpoints on top of the request gateway
// ABOUTME: Encodes auth requirements per endpoint; errors pass through as gateway.Error

package catalog

import (
	"context"
	"net/http"
	"net/url"

	"github.com/2389/itemdesk/internal/gateway"
)

// Doer sends a catalog request. *gateway.Gateway implements it.
type Doer interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// Client calls the item endpoints.
type Client struct {
	gw Doer
}

// NewClient wraps gw.
func NewClient(gw Doer) *Client {
	return &Client{gw: gw}
}

func itemPath(id string) string {
	return "/api/" + url.PathEscape(id)
}

// List fetches every item in server order. The endpoint is anonymous.
func (c *Client) List(ctx context.Context) ([]Resource, error) {
	var items []Resource
	if err := c.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/"}, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Create posts a new item and returns the server's copy.
func (c *Client) Create(ctx context.Context, p Payload) (Resource, error) {
	var r Resource
	err := c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/api/", Body: p, Auth: true}, &r)
	return r, err
}

// Get fetches one item.
func (c *Client) Get(ctx context.Context, id string) (Resource, error) {
	if id == "" {
		return Resource{}, ErrEmptyID
	}
	var r Resource
	err := c.gw.Do(ctx, gateway.Request{Method: http.MethodGet, Path: itemPath(id), Auth: true}, &r)
	return r, err
}

// Update replaces an item's fields and returns the server's copy.
func (c *Client) Update(ctx context.Context, id string, p Payload) (Resource, error) {
	if id == "" {
		return Resource{}, ErrEmptyID
	}
	var r Resource
	err := c.gw.Do(ctx, gateway.Request{Method: http.MethodPut, Path: itemPath(id), Body: p, Auth: true}, &r)
	return r, err
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: itemPath(id), Auth: true}, nil)
}
