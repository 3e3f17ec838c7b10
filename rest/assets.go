package rest

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/assetverse/go-session/transport"
)

// Asset is an inventory item as the backend reports it.
type Asset struct {
	ID           string     `json:"_id,omitempty"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Quantity     int        `json:"quantity"`
	Availability string     `json:"availability,omitempty"`
	Image        string     `json:"image,omitempty"`
	CompanyName  string     `json:"companyName,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// AssetPayload is the create/update body.
type AssetPayload struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	Image    string `json:"image,omitempty"`
}

// AssetPage is a paginated asset listing.
type AssetPage struct {
	Assets     []Asset `json:"assets"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	TotalPages int     `json:"totalPages"`
}

// AssetStats is the HR stats overview.
type AssetStats struct {
	TotalAssets    int `json:"totalAssets"`
	Returnable     int `json:"returnable"`
	NonReturnable  int `json:"nonReturnable"`
	PendingRequest int `json:"pendingRequests"`
	LimitedStock   int `json:"limitedStock"`
}

// ListQuery carries the common search/pagination parameters.
type ListQuery struct {
	Search string
	Type   string
	Status string
	Page   int
	Limit  int
}

func (q ListQuery) values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("search", q.Search)
	}
	if q.Type != "" {
		values.Set("type", q.Type)
	}
	if q.Status != "" {
		values.Set("status", q.Status)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

// AssetsClient covers the /api/assets surface.
type AssetsClient struct {
	d *transport.Dispatcher
}

func NewAssetsClient(d *transport.Dispatcher) *AssetsClient {
	return &AssetsClient{d: d}
}

// Add creates an asset (HR only).
func (c *AssetsClient) Add(ctx context.Context, payload AssetPayload) (*Asset, error) {
	var asset Asset
	if err := c.d.Post(ctx, "/api/assets", payload, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// HRAssets lists the HR manager's inventory.
func (c *AssetsClient) HRAssets(ctx context.Context, query ListQuery) (*AssetPage, error) {
	var page AssetPage
	if err := c.d.Get(ctx, "/api/assets/hr-assets", query.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Available lists assets an employee may request.
func (c *AssetsClient) Available(ctx context.Context, query ListQuery) (*AssetPage, error) {
	var page AssetPage
	if err := c.d.Get(ctx, "/api/assets/available", query.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches one asset by id.
func (c *AssetsClient) Get(ctx context.Context, id string) (*Asset, error) {
	var asset Asset
	if err := c.d.Get(ctx, "/api/assets/"+id, nil, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Update replaces an asset's mutable fields.
func (c *AssetsClient) Update(ctx context.Context, id string, payload AssetPayload) (*Asset, error) {
	var asset Asset
	if err := c.d.Put(ctx, "/api/assets/"+id, payload, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// Delete removes an asset.
func (c *AssetsClient) Delete(ctx context.Context, id string) error {
	return c.d.Delete(ctx, "/api/assets/"+id, nil)
}

// Stats fetches the HR stats overview.
func (c *AssetsClient) Stats(ctx context.Context) (*AssetStats, error) {
	var stats AssetStats
	if err := c.d.Get(ctx, "/api/assets/stats/overview", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
