package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medilens/patient-portal/internal/webhook"
)

func newAdminService(t *testing.T, cfg Config) *Service {
	t.Helper()
	client := webhook.New(webhook.Config{Backoff: time.Millisecond, MaxRetries: 3})
	return NewService(client, NewStore(), cfg, nil)
}

func TestRefreshAllBuildsCollections(t *testing.T) {
	stream := []any{
		map[string]any{"doctor_id": "DR010", "name": "Dr. Lee"},
		map[string]any{"json": map[string]any{"nurse_id": "NR010", "name": "Nurse Po"}},
		map[string]any{"patient_id": "PT010", "name": "Max"},
		map[string]any{"bed_id": "BED020"},
		map[string]any{"Session ID": "S-1", "Patient Name": "Max"},
		map[string]any{"suggestionId": "SUG010", "critical": "True"},
		map[string]any{"noise": true},
	}

	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		gotAction, _ = payload["action"].(string)
		json.NewEncoder(w).Encode(stream)
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{RefreshURL: srv.URL})
	require.NoError(t, svc.RefreshAll(context.Background()))

	assert.Equal(t, "refresh_all", gotAction)
	snap := svc.Store().Snapshot()
	assert.Len(t, snap.Doctors, 1)
	assert.Len(t, snap.Nurses, 1)
	assert.Len(t, snap.Patients, 1)
	assert.Len(t, snap.Beds, 1)
	assert.Len(t, snap.Appointments, 1)
	assert.Len(t, snap.Suggestions, 1)
}

func TestRefreshAllAcceptsWrappedStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"doctor_id": "DR011", "name": "Dr. Ortiz"}},
		})
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{RefreshURL: srv.URL})
	require.NoError(t, svc.RefreshAll(context.Background()))
	assert.Len(t, svc.Store().Snapshot().Doctors, 1)
}

func TestRefreshAllFailureSeedsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{RefreshURL: srv.URL})
	err := svc.RefreshAll(context.Background())

	require.Error(t, err)
	snap := svc.Store().Snapshot()
	require.NotEmpty(t, snap.Doctors)
	assert.Equal(t, "DR001", snap.Doctors[0].ID)
	require.NotEmpty(t, snap.Risks)
	assert.Equal(t, "Ivan Drago", snap.Risks[0].PatientName)
}

func TestRefreshAllPreservesComplaints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{RefreshURL: srv.URL})
	svc.Store().PrependComplaint(Complaint{ID: "c-1", Status: ComplaintPending})

	require.NoError(t, svc.RefreshAll(context.Background()))
	assert.Len(t, svc.Store().Snapshot().Complaints, 1)
}

func TestRefreshAllGuardsReentry(t *testing.T) {
	svc := newAdminService(t, Config{RefreshURL: "http://127.0.0.1:1"})
	require.NoError(t, svc.Store().BeginRefresh())
	defer svc.Store().EndRefresh()

	assert.ErrorIs(t, svc.RefreshAll(context.Background()), ErrRefreshInFlight)
}

func TestSubmitComplaintKeepsLocalCopyOnWebhookFailure(t *testing.T) {
	svc := newAdminService(t, Config{ComplaintsURL: "http://127.0.0.1:1"})

	c := svc.SubmitComplaint(context.Background(), "", "", "", "Cold food", "")

	assert.True(t, strings.HasPrefix(c.ID, "c-"))
	assert.Equal(t, "Anonymous", c.Name)
	assert.Equal(t, "N/A", c.Contact)
	assert.Equal(t, "Other", c.Type)
	assert.Equal(t, "Low", c.Priority)
	assert.Equal(t, ComplaintPending, c.Status)

	snap := svc.Store().Snapshot()
	require.Len(t, snap.Complaints, 1)
	assert.Equal(t, c.ID, snap.Complaints[0].ID)
}

func TestSubmitComplaintSendsActionQuery(t *testing.T) {
	var gotQuery, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("action")
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		gotID, _ = payload["id"].(string)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{ComplaintsURL: srv.URL})
	c := svc.SubmitComplaint(context.Background(), "Jane", "555", "Billing", "Overcharged", "High")

	assert.Equal(t, "submit", gotQuery)
	assert.Equal(t, c.ID, gotID)
}

func TestRefreshComplaintsReplacesList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{
			map[string]any{"id": "c-9", "type": "Facilities", "details": "Broken AC", "status": "In Progress"},
		})
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{ComplaintsURL: srv.URL})
	svc.Store().PrependComplaint(Complaint{ID: "c-old"})

	require.NoError(t, svc.RefreshComplaints(context.Background()))

	snap := svc.Store().Snapshot()
	require.Len(t, snap.Complaints, 1)
	assert.Equal(t, "c-9", snap.Complaints[0].ID)
	assert.Equal(t, ComplaintInProgress, snap.Complaints[0].Status)
}

func TestRefreshComplaintsEmptyKeepsLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{ComplaintsURL: srv.URL})
	svc.Store().PrependComplaint(Complaint{ID: "c-old"})

	require.NoError(t, svc.RefreshComplaints(context.Background()))
	assert.Len(t, svc.Store().Snapshot().Complaints, 1)
}

func TestAssignComplaintOptimisticDespiteWebhookFailure(t *testing.T) {
	svc := newAdminService(t, Config{ManageComplaintsURL: "http://127.0.0.1:1"})
	svc.Store().PrependComplaint(Complaint{ID: "c-1", Status: ComplaintPending})

	require.NoError(t, svc.AssignComplaint(context.Background(), "c-1", "Nurse Sam"))

	snap := svc.Store().Snapshot()
	assert.Equal(t, ComplaintInProgress, snap.Complaints[0].Status)
	assert.Equal(t, "Nurse Sam", snap.Complaints[0].AssignedTo)
}

func TestResolveComplaintNotifiesManageWorkflow(t *testing.T) {
	var gotAction string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.URL.Query().Get("action")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{ManageComplaintsURL: srv.URL})
	svc.Store().PrependComplaint(Complaint{ID: "c-1", Status: ComplaintPending})

	require.NoError(t, svc.ResolveComplaint(context.Background(), "c-1"))
	assert.Equal(t, "solve", gotAction)
	assert.Equal(t, ComplaintResolved, svc.Store().Snapshot().Complaints[0].Status)
}

func TestResolveUnknownComplaintSkipsWebhook(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	svc := newAdminService(t, Config{ManageComplaintsURL: srv.URL})
	assert.ErrorIs(t, svc.ResolveComplaint(context.Background(), "nope"), ErrComplaintNotFound)
	assert.False(t, called)
}
