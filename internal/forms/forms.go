// Package forms turns submitted form values into catalog records. Validation
// runs before anything is sent to the backend; every failure is reported
// against the field that caused it.
package forms

import (
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/anilthakor7007/avien-clothing-admin-frontend/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

const (
	MinCustomerPassword = 6
	MinAccountPassword  = 8
	BirthdateLayout     = "2006-01-02"
)

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

func (e Errors) Valid() bool { return len(e) == 0 }

func (e Errors) Get(field string) string { return e[field] }

func value(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}

func required(errs Errors, field, val, msg string) {
	if val == "" {
		errs.Add(field, msg)
	}
}

// Brand reads a brand form. An image is required unless one was uploaded with
// the form or the record already has one.
func Brand(v url.Values, uploaded bool) (models.Brand, Errors) {
	errs := Errors{}
	b := models.Brand{
		ID:          value(v, "id"),
		Name:        value(v, "name"),
		Tagline:     value(v, "tagline"),
		Description: value(v, "description"),
		Image:       value(v, "image"),
	}
	required(errs, "name", b.Name, "Brand name is required.")
	required(errs, "tagline", b.Tagline, "Tagline is required.")
	required(errs, "description", b.Description, "Description is required.")
	if b.Image == "" && !uploaded {
		errs.Add("image", "Image is required.")
	}
	return b, errs
}

func Category(v url.Values) (models.Category, Errors) {
	errs := Errors{}
	c := models.Category{
		ID:          value(v, "id"),
		Name:        value(v, "name"),
		Description: value(v, "description"),
	}
	required(errs, "name", c.Name, "Category name is required.")
	required(errs, "description", c.Description, "Description is required.")
	for _, id := range v["brands"] {
		if id = strings.TrimSpace(id); id != "" {
			c.Brands = append(c.Brands, models.Ref{ID: id})
		}
	}
	if len(c.Brands) == 0 {
		errs.Add("brands", "Select at least one brand.")
	}
	return c, errs
}

// Product reads a product form. Sizes come as the checked "sizes" values with
// a "price_<size>" field each. New products need at least one uploaded image;
// images of existing products are replaced separately.
func Product(v url.Values, creating bool, uploads int) (models.Product, Errors) {
	errs := Errors{}
	p := models.Product{
		ID:          value(v, "id"),
		Name:        value(v, "name"),
		Description: value(v, "description"),
		Details:     value(v, "details"),
		Brand:       models.Ref{ID: value(v, "brand")},
	}
	required(errs, "name", p.Name, "Product name is required.")
	required(errs, "description", p.Description, "Description is required.")
	required(errs, "details", p.Details, "Details are required.")
	required(errs, "brand", p.Brand.ID, "Brand is required.")

	for _, size := range models.Sizes {
		if !slices.Contains(v["sizes"], size) {
			continue
		}
		raw := value(v, "price_"+size)
		price, err := strconv.ParseFloat(raw, 64)
		switch {
		case raw == "":
			errs.Add("price_"+size, "Price for size "+size+" is required.")
		case err != nil || !finite(price):
			errs.Add("price_"+size, "Invalid price format.")
		case price < 0:
			errs.Add("price_"+size, "Price cannot be negative.")
		}
		p.Sizes = append(p.Sizes, models.SizePrice{Size: size, Price: price})
	}
	if len(p.Sizes) == 0 {
		errs.Add("sizes", "Select at least one size.")
	}

	if raw := value(v, "discount"); raw != "" {
		discount, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(discount) || discount < 0 || discount > 100 {
			errs.Add("discount", "Discount must be between 0 and 100.")
		}
		p.Discount = discount
	}

	if creating && uploads == 0 {
		errs.Add("images", "At least one image is required.")
	}
	return p, errs
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// Customer reads a customer form. The password is required on create and
// optional on edit.
func Customer(v url.Values, creating bool) (models.Customer, Errors) {
	errs := Errors{}
	c := models.Customer{
		ID:          value(v, "id"),
		FirstName:   value(v, "firstName"),
		LastName:    value(v, "lastName"),
		Email:       value(v, "email"),
		Password:    v.Get("password"),
		PhoneNumber: value(v, "phoneNumber"),
		Gender:      value(v, "gender"),
		Birthdate:   value(v, "birthdate"),
	}
	required(errs, "firstName", c.FirstName, "First name is required.")
	required(errs, "lastName", c.LastName, "Last name is required.")
	email(errs, c.Email)

	switch {
	case c.Password == "" && creating:
		errs.Add("password", "Password is required.")
	case c.Password != "" && len(c.Password) < MinCustomerPassword:
		errs.Add("password", "Password must be at least 6 characters.")
	}

	if c.Birthdate == "" {
		errs.Add("birthdate", "Birthdate is required.")
	} else if _, err := time.Parse(BirthdateLayout, c.Birthdate); err != nil {
		errs.Add("birthdate", "Birthdate must be a date (YYYY-MM-DD).")
	}
	required(errs, "gender", c.Gender, "Gender is required.")

	if c.PhoneNumber == "" {
		errs.Add("phoneNumber", "Phone number is required.")
	} else if !phonePattern.MatchString(c.PhoneNumber) {
		errs.Add("phoneNumber", "Invalid phone number.")
	}
	return c, errs
}

func email(errs Errors, addr string) {
	if addr == "" {
		errs.Add("email", "Email is required.")
	} else if !emailPattern.MatchString(addr) {
		errs.Add("email", "Invalid email format.")
	}
}

type Login struct {
	Email    string
	Password string
}

func SignIn(v url.Values) (Login, Errors) {
	errs := Errors{}
	l := Login{Email: value(v, "email"), Password: v.Get("password")}
	email(errs, l.Email)
	if l.Password == "" {
		errs.Add("password", "Password is required.")
	} else if len(l.Password) < MinAccountPassword {
		errs.Add("password", "Password must be at least 8 characters.")
	}
	return l, errs
}

type Signup struct {
	Username string
	Email    string
	Password string
}

func SignUp(v url.Values) (Signup, Errors) {
	errs := Errors{}
	s := Signup{
		Username: value(v, "username"),
		Email:    value(v, "email"),
		Password: v.Get("password"),
	}
	required(errs, "username", s.Username, "Username is required.")
	email(errs, s.Email)
	if s.Password == "" {
		errs.Add("password", "Password is required.")
	} else if len(s.Password) < MinAccountPassword {
		errs.Add("password", "Password must be at least 8 characters.")
	}
	confirm := v.Get("confirmPassword")
	if confirm == "" {
		errs.Add("confirmPassword", "Confirm password is required.")
	} else if confirm != s.Password {
		errs.Add("confirmPassword", "Passwords must match.")
	}
	return s, errs
}

func OrderStatus(v url.Values) (string, Errors) {
	errs := Errors{}
	status := value(v, "orderStatus")
	if !slices.Contains(models.OrderStatuses, status) {
		errs.Add("orderStatus", "Invalid status selected.")
	}
	return status, errs
}
