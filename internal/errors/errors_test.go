package errors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderProducesClassified(t *testing.T) {
	err := StyleError("invalid color constant").
		WithContext("color", "XYZ").
		Build()

	assert.Equal(t, CategoryStyle, err.Category())
	assert.Equal(t, SeverityError, err.Severity())
	assert.Equal(t, "invalid color constant", err.Message())
	assert.Equal(t, "XYZ", err.Context()["color"])
	assert.Contains(t, err.Error(), "[style:error]")
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := StorageError("write artifact").Build()
	wrapped := Wrap(cause, CategoryStorage, "write artifact").Build()

	assert.ErrorIs(t, wrapped, err) // same category + message
	assert.Equal(t, cause, wrapped.Unwrap())
	assert.Contains(t, wrapped.Error(), "disk full")
}

func TestGetCategoryFallsBackToInternal(t *testing.T) {
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	assert.Equal(t, CategorySerialize, GetCategory(SerializeError("x").Build()))
}

func TestHTTPStatusMapping(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)

	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ValidationError("bad request body").Build(), http.StatusBadRequest},
		{NotFoundError("no such plan").Build(), http.StatusNotFound},
		{ConflictError("memoria not published").Build(), http.StatusConflict},
		{NetworkError("upstream down").Build(), http.StatusBadGateway},
		{SerializeError("bad color").Build(), http.StatusInternalServerError},
		{StorageError("rename failed").Build(), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, adapter.StatusCodeFor(c.err))
	}
}

func TestWriteErrorResponseBody(t *testing.T) {
	adapter := NewHTTPErrorAdapter(nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/planos/1/memoria", nil)

	adapter.WriteErrorResponse(rec, req, NotFoundError("plan not found").WithContext("plan_id", "1").Build())

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"plan not found","code":"not_found","details":{"plan_id":"1"}}`, rec.Body.String())
}

func TestCLIExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 2, adapter.ExitCodeFor(ValidationError("x").Build()))
	assert.Equal(t, 11, adapter.ExitCodeFor(SerializeError("x").Build()))
	assert.Equal(t, 8, adapter.ExitCodeFor(NetworkError("x").Build()))
	assert.Equal(t, 1, adapter.ExitCodeFor(errors.New("plain")))
}
