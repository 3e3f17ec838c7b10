package rest

import (
	"context"

	"github.com/assetverse/go-session/transport"
)

// Package is a subscription tier.
type Package struct {
	ID            string   `json:"_id,omitempty"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	EmployeeLimit int      `json:"employeeLimit"`
	Features      []string `json:"features,omitempty"`
}

// PackageStatus is the HR manager's current tier and usage.
type PackageStatus struct {
	Package          Package `json:"package"`
	PackageLimit     int     `json:"packageLimit"`
	CurrentEmployees int     `json:"currentEmployees"`
	Subscription     string  `json:"subscription,omitempty"`
}

// PackagesClient covers the /api/packages surface.
type PackagesClient struct {
	d *transport.Dispatcher
}

func NewPackagesClient(d *transport.Dispatcher) *PackagesClient {
	return &PackagesClient{d: d}
}

// All lists the available tiers. Public: no bearer token required, but the
// call still goes through the dispatcher.
func (c *PackagesClient) All(ctx context.Context) ([]Package, error) {
	var envelope struct {
		Packages []Package `json:"packages"`
	}
	if err := c.d.Get(ctx, "/api/packages", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Packages, nil
}

// Mine fetches the calling HR manager's tier and usage.
func (c *PackagesClient) Mine(ctx context.Context) (*PackageStatus, error) {
	var status PackageStatus
	if err := c.d.Get(ctx, "/api/packages/my-package", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Upgrade moves the HR manager to a new tier. Limit enforcement is a server
// responsibility; this client only carries the result.
func (c *PackagesClient) Upgrade(ctx context.Context, packageID string) (*PackageStatus, error) {
	body := map[string]string{"packageId": packageID}

	var status PackageStatus
	if err := c.d.Post(ctx, "/api/packages/upgrade", body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
