package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medilens/patient-portal/internal/session"
	"github.com/medilens/patient-portal/internal/webhook"
)

func newBookingService(t *testing.T, url string) *Service {
	t.Helper()
	client := webhook.New(webhook.Config{Backoff: time.Millisecond, MaxRetries: 3})
	return NewService(client, session.NewManager(), url, nil)
}

var testAppt = Appointment{
	ID:          "APT001",
	PatientName: "John Doe",
	DoctorName:  "Dr. Ben Smith",
	Date:        "2026-09-02",
	Time:        "09:00",
	Status:      "Confirmed",
}

func TestBookSendsActionPayload(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"status":"booked","message":"See you then"}`))
	}))
	defer srv.Close()

	svc := newBookingService(t, srv.URL)
	conf, err := svc.Book(context.Background(), testAppt)

	require.NoError(t, err)
	assert.Equal(t, "booked", conf.Status)
	assert.Equal(t, "See you then", conf.Message)
	assert.Equal(t, "book_appointment", gotPayload["action"])
	assert.Equal(t, "APT001", gotPayload["appointmentId"])
}

func TestBook404ConfirmsLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	svc := newBookingService(t, srv.URL)
	conf, err := svc.Book(context.Background(), testAppt)

	require.NoError(t, err)
	assert.Equal(t, "confirmed_local", conf.Status)
}

func TestBookTransportNoiseConfirmsOffline(t *testing.T) {
	svc := newBookingService(t, "http://127.0.0.1:1") // nothing listens here

	conf, err := svc.Book(context.Background(), testAppt)

	require.NoError(t, err)
	assert.Equal(t, "confirmed_offline", conf.Status)
}

func TestBookGatewayTimeoutSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	svc := newBookingService(t, srv.URL)
	_, err := svc.Book(context.Background(), testAppt)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduling server unavailable")
}

func TestBookNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("queued"))
	}))
	defer srv.Close()

	svc := newBookingService(t, srv.URL)
	conf, err := svc.Book(context.Background(), testAppt)

	require.NoError(t, err)
	assert.Equal(t, "received", conf.Status)
	assert.Equal(t, "queued", conf.Message)
}
