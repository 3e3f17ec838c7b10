package rest

import (
	"context"
	"time"

	"github.com/assetverse/go-session/transport"
)

// Request statuses as the backend reports them.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
	RequestReturned = "returned"
)

// AssetRequest is an employee's request for an asset.
type AssetRequest struct {
	ID             string     `json:"_id,omitempty"`
	AssetID        string     `json:"assetId"`
	AssetName      string     `json:"assetName,omitempty"`
	AssetType      string     `json:"assetType,omitempty"`
	RequesterName  string     `json:"requesterName,omitempty"`
	RequesterEmail string     `json:"requesterEmail,omitempty"`
	Note           string     `json:"note,omitempty"`
	Status         string     `json:"status,omitempty"`
	RequestDate    *time.Time `json:"requestDate,omitempty"`
	ApprovalDate   *time.Time `json:"approvalDate,omitempty"`
}

// RequestPayload is the create body.
type RequestPayload struct {
	AssetID string `json:"assetId"`
	Note    string `json:"note,omitempty"`
}

// RequestPage is a paginated request listing.
type RequestPage struct {
	Requests   []AssetRequest `json:"requests"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
}

// RequestsClient covers the /api/requests surface.
type RequestsClient struct {
	d *transport.Dispatcher
}

func NewRequestsClient(d *transport.Dispatcher) *RequestsClient {
	return &RequestsClient{d: d}
}

// Create submits an asset request.
func (c *RequestsClient) Create(ctx context.Context, payload RequestPayload) (*AssetRequest, error) {
	var request AssetRequest
	if err := c.d.Post(ctx, "/api/requests", payload, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// MyRequests lists the calling employee's requests.
func (c *RequestsClient) MyRequests(ctx context.Context, query ListQuery) (*RequestPage, error) {
	var page RequestPage
	if err := c.d.Get(ctx, "/api/requests/my-requests", query.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// HRRequests lists requests against the HR manager's inventory.
func (c *RequestsClient) HRRequests(ctx context.Context, query ListQuery) (*RequestPage, error) {
	var page RequestPage
	if err := c.d.Get(ctx, "/api/requests/hr-requests", query.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Approve marks a pending request approved.
func (c *RequestsClient) Approve(ctx context.Context, id string) error {
	return c.d.Put(ctx, "/api/requests/"+id+"/approve", nil, nil)
}

// Reject marks a pending request rejected.
func (c *RequestsClient) Reject(ctx context.Context, id string) error {
	return c.d.Put(ctx, "/api/requests/"+id+"/reject", nil, nil)
}

// Return hands a returnable asset back.
func (c *RequestsClient) Return(ctx context.Context, id string) error {
	return c.d.Put(ctx, "/api/requests/"+id+"/return", nil, nil)
}

// RequestStats summarizes the HR manager's request queue.
type RequestStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Returned int `json:"returned"`
}

// Stats fetches the request queue summary.
func (c *RequestsClient) Stats(ctx context.Context) (*RequestStats, error) {
	var stats RequestStats
	if err := c.d.Get(ctx, "/api/requests/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
