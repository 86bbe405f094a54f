package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitat_payments/internal/domain/entities"
	"habitat_payments/internal/session"
)

func newTestClient(t *testing.T, handle http.HandlerFunc) *PaymentsClient {
	t.Helper()
	srv := httptest.NewServer(handle)
	t.Cleanup(srv.Close)
	c, err := NewPaymentsClient(srv.URL+"/v1/", WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewPaymentsClientRequiresBaseURL(t *testing.T) {
	_, err := NewPaymentsClient("  ")
	assert.ErrorIs(t, err, errBaseURLRequired)
}

func TestCreateIntent(t *testing.T) {
	var gotBody map[string]any
	var gotKey, gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Idempotency-Key")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		writeJSON(w, http.StatusCreated, `{"intent_id":"pi_1","status":"pending","confirm_message":"Dial *126#","action":"confirm"}`)
	})

	receipt, err := c.CreateIntent(context.Background(), entities.CreateIntentCommand{
		PayerID:        "user-1",
		Purpose:        entities.PurposeVisit,
		RelatedID:      "visit-42",
		Amount:         5000,
		Channel:        entities.ChannelMTNMoMo,
		CustomerPhone:  "+237677123456",
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "/v1/payments/intents", gotPath)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "mobile-money-mtn", gotBody["channel"])
	assert.Equal(t, "visit-42", gotBody["related_id"])
	assert.EqualValues(t, 5000, gotBody["amount"])

	assert.Equal(t, "pi_1", receipt.IntentID)
	assert.Equal(t, entities.IntentStatusPending, receipt.Status)
	assert.Equal(t, entities.IntentActionConfirm, receipt.Action)
	assert.Equal(t, "Dial *126#", receipt.ConfirmMessage)
}

func TestCreateIntentErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "invalid phone",
			status: http.StatusUnprocessableEntity,
			body:   `{"code":"INVALID_PHONE","message":"The phone number was rejected"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, entities.ErrIntentRejected)
				var terr *TransportError
				require.True(t, errors.As(err, &terr))
				assert.Equal(t, "The phone number was rejected", terr.PublicMessage())
			},
		},
		{
			name:   "missing related id",
			status: http.StatusBadRequest,
			body:   `{"code":"MISSING_RELATED_ID","message":"Payment is not linked"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, entities.ErrMissingRelatedID)
			},
		},
		{
			name:   "provider error keeps message",
			status: http.StatusBadGateway,
			body:   `{"code":"PAYMENT_PROVIDER_ERROR","message":"The payment provider is unavailable"}`,
			check: func(t *testing.T, err error) {
				var terr *TransportError
				require.True(t, errors.As(err, &terr))
				assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
				assert.Equal(t, "PAYMENT_PROVIDER_ERROR", terr.Code)
				assert.Equal(t, "The payment provider is unavailable", terr.PublicMessage())
				assert.False(t, errors.Is(err, entities.ErrIntentRejected))
			},
		},
		{
			name:   "non json error",
			status: http.StatusServiceUnavailable,
			body:   `upstream down`,
			check: func(t *testing.T, err error) {
				var terr *TransportError
				require.True(t, errors.As(err, &terr))
				assert.Empty(t, terr.PublicMessage())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.CreateIntent(context.Background(), entities.CreateIntentCommand{Channel: entities.ChannelCard})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestGetIntentStatus(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, `{"intent_id":"pi_1","status":"failed","failure_reason":"Insufficient balance"}`)
	})

	report, err := c.GetIntentStatus(context.Background(), "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "/v1/payments/intents/pi_1", gotPath)
	assert.Equal(t, entities.IntentStatusFailed, report.Status)
	assert.Equal(t, "Insufficient balance", report.FailureReason)
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewPaymentsClient(url)
	require.NoError(t, err)

	_, err = c.GetIntentStatus(context.Background(), "pi_1")
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.Empty(t, terr.PublicMessage())
	assert.NotNil(t, terr.Unwrap())
}

func TestRejectedPhoneReasonReachesSession(t *testing.T) {
	const reason = "Ce numero n'est pas un compte MTN MoMo"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"code":"INVALID_PHONE","message":"`+reason+`"}`)
	})

	s, err := session.New(session.Params{
		Backend:   c,
		Payer:     session.Payer{ID: "user-1"},
		Purpose:   entities.PurposeVisit,
		RelatedID: "visit-42",
		Amount:    5000,
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetForm(session.Form{
		Channel:        entities.ChannelMTNMoMo,
		Phone:          "677123456",
		AcceptedPolicy: true,
	}))
	require.NoError(t, s.Submit())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, session.StateValidationError, snap.State)
	assert.Equal(t, reason, snap.FailureReason)
}
