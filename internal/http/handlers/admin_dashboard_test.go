package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medilens/patient-portal/internal/admin"
	"github.com/medilens/patient-portal/internal/webhook"
)

func newDashboardHandler(t *testing.T, refreshURL string) *AdminDashboardHandler {
	t.Helper()
	client := webhook.New(webhook.Config{Backoff: time.Millisecond, MaxRetries: 0})
	svc := admin.NewService(client, admin.NewStore(), admin.Config{RefreshURL: refreshURL}, nil)
	return NewAdminDashboardHandler(svc, nil)
}

func TestRefreshEndpointServesCollections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{
			map[string]any{"doctor_id": "DR001", "name": "Dr. Ben Smith"},
		})
	}))
	defer srv.Close()

	h := newDashboardHandler(t, srv.URL)
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Fallback    bool              `json:"fallback"`
		Collections admin.Collections `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Fallback)
	assert.Len(t, resp.Collections.Doctors, 1)
}

func TestRefreshEndpointFallsBackOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	h := newDashboardHandler(t, srv.URL)
	req := httptest.NewRequest(http.MethodPost, "/admin/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Fallback    bool              `json:"fallback"`
		Collections admin.Collections `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Fallback)
	assert.NotEmpty(t, resp.Collections.Doctors)
}

func TestSummaryEndpoint(t *testing.T) {
	h := newDashboardHandler(t, "http://127.0.0.1:1")
	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	rec := httptest.NewRecorder()
	h.Summary(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sum admin.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 120, sum.TotalPatients)
}

func TestAcknowledgeSuggestionEndpoint(t *testing.T) {
	h := newDashboardHandler(t, "http://127.0.0.1:1")
	h.admin.Store().ReplaceAll(admin.Collections{
		Suggestions: []admin.AISuggestion{{SuggestionID: "SUG001", Status: "Pending"}},
	})

	rec := routeRequest(t, func(r chi.Router) {
		r.Post("/admin/suggestions/{suggestionID}/ack", h.AcknowledgeSuggestion)
	}, http.MethodPost, "/admin/suggestions/SUG001/ack", map[string]any{"status": "Dismissed"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dismissed", h.admin.Store().Snapshot().Suggestions[0].Status)
}

func TestLogoutClearsStore(t *testing.T) {
	h := newDashboardHandler(t, "http://127.0.0.1:1")
	h.admin.Store().PrependComplaint(admin.Complaint{ID: "c-1"})

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.admin.Store().Snapshot().Complaints)
}
