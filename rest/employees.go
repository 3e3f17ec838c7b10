package rest

import (
	"context"
	"net/url"

	"github.com/assetverse/go-session/transport"
)

// Employee is a roster entry.
type Employee struct {
	ID           string `json:"_id,omitempty"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	ProfileImage string `json:"profileImage,omitempty"`
	Role         string `json:"role,omitempty"`
	CompanyName  string `json:"companyName,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
}

// TeamCompany groups teammates by affiliated company.
type TeamCompany struct {
	CompanyName string     `json:"companyName"`
	CompanyLogo string     `json:"companyLogo,omitempty"`
	HRName      string     `json:"hrName,omitempty"`
	Members     []Employee `json:"members"`
}

// EmployeePage is a paginated roster listing.
type EmployeePage struct {
	Employees  []Employee `json:"employees"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// EmployeesClient covers the /api/employees surface.
type EmployeesClient struct {
	d *transport.Dispatcher
}

func NewEmployeesClient(d *transport.Dispatcher) *EmployeesClient {
	return &EmployeesClient{d: d}
}

// MyTeam lists the calling employee's teams, grouped by company.
func (c *EmployeesClient) MyTeam(ctx context.Context) ([]TeamCompany, error) {
	var envelope struct {
		Companies []TeamCompany `json:"companies"`
	}
	if err := c.d.Get(ctx, "/api/employees/my-team", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Companies, nil
}

// TeamBirthdays lists teammates with a birthday in the current month.
func (c *EmployeesClient) TeamBirthdays(ctx context.Context) ([]Employee, error) {
	var envelope struct {
		Birthdays []Employee `json:"birthdays"`
	}
	if err := c.d.Get(ctx, "/api/employees/team-birthdays", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Birthdays, nil
}

// HREmployees lists the HR manager's roster.
func (c *EmployeesClient) HREmployees(ctx context.Context, query ListQuery) (*EmployeePage, error) {
	var page EmployeePage
	if err := c.d.Get(ctx, "/api/employees/hr-employees", query.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Add affiliates an unaffiliated employee with the HR manager's company.
// The backend enforces the package limit and answers with field errors when
// it is exceeded.
func (c *EmployeesClient) Add(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.d.Post(ctx, "/api/employees", body, nil)
}

// Remove drops an employee from the roster by email.
func (c *EmployeesClient) Remove(ctx context.Context, email string) error {
	return c.d.Delete(ctx, "/api/employees/"+url.PathEscape(email), nil)
}
