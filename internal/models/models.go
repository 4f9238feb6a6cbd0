package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Order statuses accepted by the backend.
const (
	StatusPending   = "Pending"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

var OrderStatuses = []string{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}

// Sizes offered on the product form.
var Sizes = []string{"S", "M", "L", "XL"}

// Ref points at another record. The backend sends either the bare id or a
// populated object, and expects the bare id back.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Ref(p)
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}

// Label prefers the populated name and falls back to the id.
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

type Brand struct {
	ID          string    `json:"_id,omitempty"`
	Name        string    `json:"name"`
	Tagline     string    `json:"tagline"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Category struct {
	ID          string    `json:"_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Brands      []Ref     `json:"brands"`
	Active      bool      `json:"active"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type SizePrice struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

type Product struct {
	ID          string      `json:"_id,omitempty"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Details     string      `json:"details"`
	Brand       Ref         `json:"brand"`
	Sizes       []SizePrice `json:"sizes"`
	Discount    float64     `json:"discount"`
	Images      []Image     `json:"images"`
	Active      bool        `json:"active"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// MinPrice is the cheapest size price, 0 when the product has no sizes.
func (p Product) MinPrice() float64 {
	if len(p.Sizes) == 0 {
		return 0
	}
	min := p.Sizes[0].Price
	for _, s := range p.Sizes[1:] {
		if s.Price < min {
			min = s.Price
		}
	}
	return min
}

type Customer struct {
	ID          string    `json:"_id,omitempty"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"` // write-only
	PhoneNumber string    `json:"phoneNumber"`
	Gender      string    `json:"gender"`
	Birthdate   string    `json:"birthdate"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerSnapshot is the denormalized customer embedded in an order.
type CustomerSnapshot struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
}

// UnmarshalJSON accepts the bare customer id sent by unpopulated responses.
func (c *CustomerSnapshot) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*c = CustomerSnapshot{ID: id}
		return nil
	}
	type plain CustomerSnapshot
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CustomerSnapshot(p)
	return nil
}

func (c CustomerSnapshot) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type LineItem struct {
	Product  Ref     `json:"product"`
	Size     string  `json:"size"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.State, a.ZipCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Order struct {
	ID              string            `json:"_id,omitempty"`
	Customer        *CustomerSnapshot `json:"customer,omitempty"`
	Items           []LineItem        `json:"items"`
	ShippingAddress Address           `json:"shippingAddress"`
	TotalAmount     float64           `json:"totalAmount"`
	Status          string            `json:"orderStatus"`
	CreatedAt       time.Time         `json:"createdAt"`
}

func (o Order) CustomerName() string {
	if o.Customer == nil {
		return ""
	}
	return o.Customer.FullName()
}

// User is the account returned by the auth endpoints.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

// AuthResponse is the body of a successful login or signup.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
