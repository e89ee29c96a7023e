package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ytf-quote/internal/catalog"
)

type typefacesResponse struct {
	Data []catalog.Typeface `json:"data"`
}

type sizesResponse struct {
	Data []catalog.BusinessSize `json:"data"`
}

type licensesResponse struct {
	Data []catalog.LicenseType `json:"data"`
}

type usageResponse struct {
	Data catalog.UsageOptionsResult `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestCatalogHandlers(t *testing.T) {
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: catalog.NewService(catalog.ServiceConfig{})})

	t.Run("typefaces", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/typefaces", nil)
		rec := httptest.NewRecorder()
		handler.Typefaces(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp typefacesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 11)
		require.Equal(t, "YTF Oldman", resp.Data[0].Family)
		require.Equal(t, "90", resp.Data[0].BasePrice.String())
	})

	t.Run("business sizes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/business-sizes", nil)
		rec := httptest.NewRecorder()
		handler.BusinessSizes(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp sizesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 6)
		require.Equal(t, catalog.SizeIndividual, resp.Data[0].ID)
	})

	t.Run("license types filtered by size", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/license-types?businessSize=individual", nil)
		rec := httptest.NewRecorder()
		handler.LicenseTypes(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp licensesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		require.Equal(t, catalog.LicenseDesktop, resp.Data[0].ID)
		require.Equal(t, catalog.LicenseWeb, resp.Data[1].ID)
	})

	t.Run("license types unknown size", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/license-types?businessSize=huge", nil)
		rec := httptest.NewRecorder()
		handler.LicenseTypes(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "BAD_REQUEST", resp.Error.Code)
		require.Equal(t, "businessSize", resp.Error.Details["field"])
	})

	t.Run("usage options", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/license-types/merchandising/usage-options", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", "merchandising")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.UsageOptions(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp usageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, catalog.UsageSetPackaging, resp.Data.UsageSet)
		require.True(t, resp.Data.RequiresManualUsage)
		require.False(t, resp.Data.AutoUsage)
		require.Len(t, resp.Data.Options, 3)
	})

	t.Run("usage options unknown license", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/license-types/tattoo/usage-options", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("id", "tattoo")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.UsageOptions(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
