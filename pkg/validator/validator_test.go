package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type addRequest struct {
	ProductID int    `json:"product_id" validate:"required,gt=0"`
	Note      string `json:"note" validate:"max=5"`
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(addRequest{ProductID: 3}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(addRequest{ProductID: 0, Note: "too long"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "is required", fields["product_id"])
	assert.Equal(t, "must be at most 5 characters", fields["note"])
	assert.Contains(t, valErr.Error(), "field 'product_id' is required")
}

func TestValidate_GreaterThan(t *testing.T) {
	err := Validate(addRequest{ProductID: -1})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be greater than 0", valErr.Fields()["product_id"])
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":2}`))
	var dst addRequest
	require.NoError(t, DecodeAndValidate(req, &dst))
	assert.Equal(t, 2, dst.ProductID)
}

func TestDecodeAndValidate_MalformedJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":`))
	var dst addRequest
	err := DecodeAndValidate(req, &dst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id":2,"qty":5}`))
	var dst addRequest
	assert.Error(t, DecodeAndValidate(req, &dst))
}
