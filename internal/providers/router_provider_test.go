package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterProvider_RegistersRoutes(t *testing.T) {
	rp := NewRouterProvider()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rp.Get("/catalog", ok)
	rp.Post("/send", ok)

	routes := rp.GetRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/catalog", routes[0].Url)
	assert.Equal(t, "/send", routes[1].Url)
}

func TestRouterProvider_MethodFiltering(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/send", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	handler := rp.GetRoutes()[0].Handler

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/send", nil))
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/send", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
