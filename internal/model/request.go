package model

import (
	"errors"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignInRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 72)),
	)
}

// SignUpRequest has no role field: public registration always yields RoleUser.
type SignUpRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
	Handle               string `json:"handle"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Bio                  string `json:"bio"`
}

func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(
			&r.PasswordConfirmation,
			validation.Required,
			validation.By(StringEquals(r.Password, "the password and passwordConfirmation do not match")),
		),
		validation.Field(&r.Handle, handleRules()...),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
	)
}

type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Handle    string `json:"handle"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`
	Role      Role   `json:"role"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.Handle, handleRules()...),
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
		validation.Field(&r.Avatar, is.URL),
		validation.Field(&r.Role, validation.In(RoleUser, RoleAdmin).Error("role must be user or admin")),
	)
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Handle    *string `json:"handle"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
	Avatar    *string `json:"avatar"`
	Role      *Role   `json:"role"`
}

func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(8, 72), validation.By(passwordStrength)),
		validation.Field(&r.Handle, validation.NilOrNotEmpty, validation.Length(3, 50), validation.Match(handlePattern)),
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
		validation.Field(&r.Bio, validation.Length(0, 2000)),
		validation.Field(&r.Avatar, is.URL),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.In(RoleUser, RoleAdmin).Error("role must be user or admin")),
	)
}

func (r UpdateUserRequest) Patch() UserPatch {
	return UserPatch{
		Email:     r.Email,
		Handle:    r.Handle,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
		Avatar:    r.Avatar,
		Role:      r.Role,
	}
}

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (r UpdateCategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
	)
}

func (r UpdateCategoryRequest) Patch() CategoryPatch {
	return CategoryPatch{Name: r.Name, Description: r.Description}
}

func (r CategoryRequest) Category() Category {
	return Category{Name: r.Name, Description: r.Description}
}

type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	CategoryID  string   `json:"categoryId"`
}

func (r ProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Price, validation.NotNil.Error("price is required"), validation.Min(0.0), validation.Max(1000000.0)),
		validation.Field(&r.Stock, validation.NotNil, validation.Min(0)),
		validation.Field(&r.CategoryID, validation.Required, is.UUID),
	)
}

func (r ProductRequest) Product() Product {
	p := Product{Name: r.Name, Description: r.Description, CategoryID: r.CategoryID}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	return p
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	CategoryID  *string  `json:"categoryId"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 5000)),
		validation.Field(&r.Price, validation.Min(0.0), validation.Max(1000000.0)),
		validation.Field(&r.Stock, validation.Min(0)),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty, is.UUID),
	)
}

func (r UpdateProductRequest) Patch() ProductPatch {
	return ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		CategoryID:  r.CategoryID,
	}
}

// StringEquals checks that the validated value matches str.
func StringEquals(str string, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return errors.New(message)
		}
		return nil
	}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(8, 72),
		validation.By(passwordStrength),
	}
}

func handleRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(3, 50),
		validation.Match(handlePattern).Error("the handle may only contain letters, numbers, dots, dashes and underscores"),
	}
}

func passwordStrength(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}

	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errors.New("the password must contain at least one uppercase letter, one lowercase letter and one number")
	}
	return nil
}
