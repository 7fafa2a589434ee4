package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inventory-api/internal/model"
	"inventory-api/internal/query"
	"inventory-api/pkg/apierror"
)

type mockHealthChecker struct {
	mock.Mock
}

func (m *mockHealthChecker) Health(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var out model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		checker := new(mockHealthChecker)
		checker.On("Health", mock.Anything).Return(nil).Once()

		rec := httptest.NewRecorder()
		NewHealthHandler(checker).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeResponse(t, rec).Success)
		checker.AssertExpectations(t)
	})

	t.Run("database down", func(t *testing.T) {
		checker := new(mockHealthChecker)
		checker.On("Health", mock.Anything).Return(errors.New("connection refused")).Once()

		rec := httptest.NewRecorder()
		NewHealthHandler(checker).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		body := decodeResponse(t, rec)
		assert.Equal(t, "UNAVAILABLE", body.Error.Code)
		assert.NotContains(t, rec.Body.String(), "connection refused")
		checker.AssertExpectations(t)
	})
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", apierror.Conflict("email taken", nil), http.StatusConflict, "CONFLICT"},
		{"wrapped api error", fmt.Errorf("sign up: %w", apierror.Unprocessable("registration could not be completed", errors.New("boom"))), http.StatusUnprocessableEntity, "UNPROCESSABLE_ENTITY"},
		{"field errors", validation.Errors{"email": errors.New("must be a valid email address")}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"user not found", fmt.Errorf("get: %w", model.ErrUserNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"category in use", model.ErrCategoryInUse, http.StatusConflict, "CONFLICT"},
		{"invalid input", model.ErrInvalidInput, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown", errors.New("pool exhausted"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			body := decodeResponse(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestWriteErrorFieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, validation.Errors{
		"email":  errors.New("cannot be blank"),
		"handle": nil,
	})

	var body struct {
		Error struct {
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"email": "cannot be blank"}, body.Error.Details)
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	writeNoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		var payload model.SignInRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		err := decodeAndValidate(httptest.NewRecorder(), req, &payload)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "request body is required", apiErr.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		var payload model.SignInRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		err := decodeAndValidate(httptest.NewRecorder(), req, &payload)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("validation runs after decoding", func(t *testing.T) {
		var payload model.SignInRequest
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope","password":"x","extra":true}`))
		err := decodeAndValidate(httptest.NewRecorder(), req, &payload)

		var fieldErrs validation.Errors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "email")
		assert.NotContains(t, fieldErrs, "password")
	})
}

func TestListSpecValidatesEqualityFilters(t *testing.T) {
	res := query.Resource{
		EqualFields: map[string]string{"role": "role"},
		SortFields:  map[string]string{"email": "email"},
		DefaultSort: "email",
		MaxLimit:    50,
	}
	rules := map[string][]validation.Rule{"role": {validation.In("user", "admin")}}

	spec, err := listSpec(httptest.NewRequest(http.MethodGet, "/?role=admin&limit=80", nil), res, rules)
	require.NoError(t, err)
	assert.Equal(t, "admin", spec.Equal["role"])
	assert.Equal(t, 50, spec.Limit)

	_, err = listSpec(httptest.NewRequest(http.MethodGet, "/?role=root", nil), res, rules)
	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "role")
}
