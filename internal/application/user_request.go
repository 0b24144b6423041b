package application

import (
	"strings"

	"github.com/oksasatya/go-user-orders-api/internal/domain/entity"
)

// Field rules live in the validate tags below; userMessages holds the message reported
// for each rule, keyed by "<fieldPath>.<tag>". A missing field is always reported as
// "<fieldPath> is Required".

type FullNameInput struct {
	FirstName *string `json:"firstName" validate:"required,min=3,max=15"`
	LastName  *string `json:"lastName" validate:"required,min=3,max=15"`
}

type AddressInput struct {
	Street  *string `json:"street" validate:"required,min=3,max=15"`
	City    *string `json:"city" validate:"required,min=3,max=15"`
	Country *string `json:"country" validate:"required,min=3,max=15"`
}

type OrderInput struct {
	ProductName *string  `json:"productName" validate:"required,min=3,max=40"`
	Price       *float64 `json:"price" validate:"required,min=1"`
	Quantity    *int     `json:"quantity" validate:"required,min=1"`
}

// CreateUserRequest is the payload of POST /api/users.
type CreateUserRequest struct {
	UserID   *int64         `json:"userId" validate:"required"`
	Username *string        `json:"username" validate:"required,min=3,max=15"`
	Password *string        `json:"password" validate:"required,min=3,max=16"`
	FullName *FullNameInput `json:"fullName" validate:"required"`
	Age      *int           `json:"age" validate:"required,min=1"`
	Email    *string        `json:"email" validate:"required,email"`
	IsActive *bool          `json:"isActive" validate:"required"`
	Hobbies  []string       `json:"hobbies" validate:"required,nonempty"`
	Address  *AddressInput  `json:"address" validate:"required"`
	Orders   []OrderInput   `json:"orders" validate:"omitempty,nonempty,dive"`
}

// UpdateUserRequest is the payload of PUT /api/users/:userId. Only the supplied
// fields are checked. userId and password cannot be changed through it.
type UpdateUserRequest struct {
	Username *string        `json:"username" validate:"omitempty,min=3,max=15"`
	FullName *FullNameInput `json:"fullName"`
	Age      *int           `json:"age" validate:"omitempty,min=1"`
	Email    *string        `json:"email" validate:"omitempty,email"`
	IsActive *bool          `json:"isActive"`
	Hobbies  []string       `json:"hobbies" validate:"omitempty,nonempty"`
	Address  *AddressInput  `json:"address"`
	Orders   []OrderInput   `json:"orders" validate:"omitempty,nonempty,dive"`
}

var userMessages = map[string]string{
	"username.min":           "Please enter username at least 3 character",
	"username.max":           "Username cannot be more than 15 characters",
	"password.min":           "Please enter password at least 3 characters",
	"password.max":           "Password cannot be more than 16 characters",
	"fullName.firstName.min": "Please enter first name at least 3 digits",
	"fullName.firstName.max": "First name cannot be more than 15 digits",
	"fullName.lastName.min":  "Please enter last name at least 3 digits",
	"fullName.lastName.max":  "Last name cannot be more than 15 digits",
	"age.min":                "Please enter age at least 1 digits",
	"email.email":            "Invalid email address",
	"hobbies.nonempty":       "hobbies must contain at least 1 element(s)",
	"address.street.min":     "Please enter street at least 3 digits",
	"address.street.max":     "Street cannot be more than 15 digits",
	"address.city.min":       "Please enter city at least 3 digits",
	"address.city.max":       "City cannot be more than 15 digits",
	"address.country.min":    "Please enter country at least 3 digits",
	"address.country.max":    "Country cannot be more than 15 digits",
	"orders.nonempty":        "orders must contain at least 1 element(s)",
	"orders.productName.min": "Please enter product name at least 3 digits",
	"orders.productName.max": "Product name cannot be more than 40 digits",
	"orders.price.min":       "Please enter price at least 1 digits",
	"orders.quantity.min":    "Please enter quantity at least 1 digits",
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func (in *FullNameInput) normalize() {
	if in == nil {
		return
	}
	trim(in.FirstName)
	trim(in.LastName)
}

func (in *AddressInput) normalize() {
	if in == nil {
		return
	}
	trim(in.Street)
	trim(in.City)
	trim(in.Country)
}

func normalizeOrders(orders []OrderInput) {
	for i := range orders {
		trim(orders[i].ProductName)
	}
}

func normalizeEmail(s *string) {
	if s != nil {
		*s = strings.ToLower(strings.TrimSpace(*s))
	}
}

// Normalize trims every string field and lowercases the email. Passwords are kept as typed.
func (r *CreateUserRequest) Normalize() {
	trim(r.Username)
	normalizeEmail(r.Email)
	r.FullName.normalize()
	r.Address.normalize()
	normalizeOrders(r.Orders)
}

func (r *UpdateUserRequest) Normalize() {
	trim(r.Username)
	normalizeEmail(r.Email)
	r.FullName.normalize()
	r.Address.normalize()
	normalizeOrders(r.Orders)
}

func (in *FullNameInput) toEntity() entity.FullName {
	return entity.FullName{FirstName: *in.FirstName, LastName: *in.LastName}
}

func (in *AddressInput) toEntity() entity.Address {
	return entity.Address{Street: *in.Street, City: *in.City, Country: *in.Country}
}

func toOrders(in []OrderInput) []entity.Order {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.Order, 0, len(in))
	for _, o := range in {
		out = append(out, entity.Order{ProductName: *o.ProductName, Price: *o.Price, Quantity: *o.Quantity})
	}
	return out
}

// toEntity must only be called on a validated request.
func (r *CreateUserRequest) toEntity() *entity.User {
	return &entity.User{
		UserID:   *r.UserID,
		Username: *r.Username,
		Password: *r.Password,
		FullName: r.FullName.toEntity(),
		Age:      *r.Age,
		Email:    *r.Email,
		IsActive: *r.IsActive,
		Hobbies:  append([]string(nil), r.Hobbies...),
		Address:  r.Address.toEntity(),
		Orders:   toOrders(r.Orders),
	}
}

func (r *UpdateUserRequest) toPatch() entity.UserPatch {
	p := entity.UserPatch{
		Username: r.Username,
		Age:      r.Age,
		Email:    r.Email,
		IsActive: r.IsActive,
		Hobbies:  r.Hobbies,
		Orders:   toOrders(r.Orders),
	}
	if r.FullName != nil {
		fn := r.FullName.toEntity()
		p.FullName = &fn
	}
	if r.Address != nil {
		addr := r.Address.toEntity()
		p.Address = &addr
	}
	return p
}
