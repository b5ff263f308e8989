package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quickcart/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWriteError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, writeError(c, err))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestWriteError_HTTPError(t *testing.T) {
	rec, body := runWriteError(t, usecase.NewRedirectError(http.StatusBadRequest, "Your cart is empty", "/cart.html"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Your cart is empty", body["error"])
	assert.Equal(t, "/cart.html", body["redirect"])
	assert.NotContains(t, body, "fields")
}

func TestWriteError_FieldError(t *testing.T) {
	rec, body := runWriteError(t, usecase.NewFieldError("invalid input", map[string]string{"email": "Please enter a valid email"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]interface{}{"email": "Please enter a valid email"}, body["fields"])
}

func TestWriteError_Confirmation(t *testing.T) {
	rec, body := runWriteError(t, &usecase.ConfirmationError{Title: "Remove Item?", Message: "sure?"})

	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Equal(t, "confirmation required", body["error"])
	assert.Equal(t, "Remove Item?", body["title"])
	assert.Equal(t, "sure?", body["message"])
}

func TestWriteError_Unknown(t *testing.T) {
	rec, body := runWriteError(t, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", body["error"])
}

func TestConfirmed(t *testing.T) {
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/cart?confirm=true", nil), httptest.NewRecorder())
	assert.True(t, confirmed(c))

	c = e.NewContext(httptest.NewRequest(http.MethodDelete, "/cart?confirm=1", nil), httptest.NewRecorder())
	assert.False(t, confirmed(c))
}
