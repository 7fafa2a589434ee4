package model

import "errors"

var (
	// Identity related errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrHandleTaken  = errors.New("handle already taken")

	// Token related errors
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")

	// Catalog related errors
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrCategoryInUse     = errors.New("category still has products")
	ErrProductNotFound   = errors.New("product not found")

	// Internal failures
	ErrHashing       = errors.New("password hashing failed")
	ErrConfiguration = errors.New("invalid configuration")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
