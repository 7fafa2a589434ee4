package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"inventory-api/internal/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

var uniqueConstraints = map[string]error{
	"users_email_key":     model.ErrEmailTaken,
	"users_handle_key":    model.ErrHandleTaken,
	"categories_name_key": model.ErrCategoryNameTaken,
}

// uniqueViolation translates a unique-constraint failure into the matching
// domain sentinel.
func uniqueViolation(err error) (error, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil, false
	}

	if sentinel, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
		return sentinel, true
	}
	return nil, false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// isInvalidID reports a malformed uuid literal, which callers treat as "not found".
func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepr
}
