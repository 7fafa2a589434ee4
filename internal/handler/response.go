package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
	"inventory-api/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
	})
}

func writeNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	var fieldErrs validation.Errors

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.As(err, &fieldErrs):
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
		body.Message = "request validation failed"
		body.Details = fieldMessages(fieldErrs)
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "User not found"
	case errors.Is(err, model.ErrCategoryNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Category not found"
	case errors.Is(err, model.ErrProductNotFound):
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Product not found"
	case errors.Is(err, model.ErrEmailTaken):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Email already registered"
	case errors.Is(err, model.ErrHandleTaken):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Handle already taken"
	case errors.Is(err, model.ErrCategoryNameTaken):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Category name already exists"
	case errors.Is(err, model.ErrCategoryInUse):
		status = http.StatusConflict
		body.Code = "CONFLICT"
		body.Message = "Category still has products"
	case errors.Is(err, model.ErrInvalidInput):
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
	default:
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

func fieldMessages(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, err := range errs {
		if err != nil {
			out[field] = err.Error()
		}
	}
	return out
}

// decodeAndValidate reads a JSON body into dst and runs its validation rules.
// Unknown fields are ignored.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst validation.Validatable) error {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apierror.BadRequest("request body is required", nil)
		}
		return apierror.BadRequest("invalid JSON body", err.Error())
	}

	return dst.Validate()
}

// listSpec turns the request's query string into a normalized filter for res.
// Extra rules validate equality filters before they reach the store.
func listSpec(r *http.Request, res query.Resource, rules map[string][]validation.Rule) (query.Spec, error) {
	in, err := query.ParseValues(r.URL.Query(), res)
	if err != nil {
		return query.Spec{}, err
	}

	errs := validation.Errors{}
	for param, fieldRules := range rules {
		if value, ok := in.Equal[param]; ok {
			if err := validation.Validate(value, fieldRules...); err != nil {
				errs[param] = err
			}
		}
	}
	if len(errs) > 0 {
		return query.Spec{}, errs
	}

	return query.Build(in, res), nil
}
