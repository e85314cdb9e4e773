package vietnamchain

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func newTestLedger(t *testing.T, handler http.Handler) (types.Ledger, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	l, err := NewLedger(context.Background(), &types.LedgerConfig{
		Name:           types.VietnamChain,
		ChainType:      types.RESTLEDGER,
		NodeURL:        server.URL,
		APIKey:         "test-key",
		APISecret:      "test-secret",
		OrganizationID: "org-1",
	}, testLogger())
	require.NoError(t, err)
	return l, server
}

func TestNewLedgerRequiresCredentials(t *testing.T) {
	_, err := NewLedger(context.Background(), &types.LedgerConfig{
		Name:    types.VietnamChain,
		NodeURL: "http://localhost:9",
	}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, commonerrors.ErrNotConfigured)
}

func TestRegisterShipmentSignsRequest(t *testing.T) {
	var captured *http.Request
	var capturedBody map[string]string

	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
		json.NewEncoder(w).Encode(map[string]string{"transactionId": "vn_tx_1"})
	}))

	txHash, err := l.RegisterShipment(context.Background(), "SHIP-1", "TRK-9", "abc123", `{"k":"v"}`)
	require.NoError(t, err)
	assert.Equal(t, "vn_tx_1", txHash)

	require.NotNil(t, captured)
	assert.Equal(t, "/"+shipmentsEndpoint, captured.URL.Path)
	assert.Equal(t, "test-key", captured.Header.Get("X-Auth-ApiKey"))
	assert.Equal(t, "org-1", captured.Header.Get("X-Organization-ID"))
	assert.NotEmpty(t, capturedBody["timestamp"])

	timestamp := captured.Header.Get("X-Auth-Timestamp")
	require.NotEmpty(t, timestamp)

	// The server can reproduce the signature from the canonical body.
	expected := computeSignature("test-secret", http.MethodPost, shipmentsEndpoint, capturedBody, timestamp)
	assert.Equal(t, expected, captured.Header.Get("X-Auth-Signature"))
}

// referenceSignature reproduces the gateway's signing scheme independently
// of the client implementation.
func referenceSignature(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestSignatureOmitsBodySegmentWithoutBody(t *testing.T) {
	endpoint := transactionsEndpoint + "/tx1"
	ts := "1700000000000"

	// Body-less requests sign METHOD:ENDPOINT:TIMESTAMP, three segments.
	want := referenceSignature("test-secret", "GET:"+endpoint+":"+ts)
	assert.Equal(t, want, computeSignature("test-secret", http.MethodGet, endpoint, nil, ts))

	// The empty-body-segment form must not be produced.
	stale := referenceSignature("test-secret", "GET:"+endpoint+"::"+ts)
	assert.NotEqual(t, stale, computeSignature("test-secret", http.MethodGet, endpoint, nil, ts))
}

func TestTransactionStatusRequestSignature(t *testing.T) {
	var captured *http.Request

	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "CONFIRMED"})
	}))

	_, err := l.TransactionStatus(context.Background(), "vn_tx_1")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/"+transactionsEndpoint+"/vn_tx_1", captured.URL.Path)

	timestamp := captured.Header.Get("X-Auth-Timestamp")
	require.NotEmpty(t, timestamp)

	want := referenceSignature("test-secret", "GET:"+transactionsEndpoint+"/vn_tx_1:"+timestamp)
	assert.Equal(t, want, captured.Header.Get("X-Auth-Signature"))
}

func TestRegisterEventMissingTransactionID(t *testing.T) {
	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))

	_, err := l.RegisterEvent(context.Background(), "SHIP-1", "ev_1", "customs_cleared", "hash", "{}")
	require.Error(t, err)
	assert.ErrorIs(t, err, commonerrors.ErrLedgerRejected)
}

func TestRegisterDocumentGeneratesDocumentID(t *testing.T) {
	var capturedBody map[string]string

	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&capturedBody))
		json.NewEncoder(w).Encode(map[string]string{"transactionId": "vn_tx_doc"})
	}))

	_, err := l.RegisterDocument(context.Background(), "dochash", "{}")
	require.NoError(t, err)
	assert.NotEmpty(t, capturedBody["documentId"])
	assert.Equal(t, "dochash", capturedBody["documentHash"])
}

func TestTransactionStatusMapping(t *testing.T) {
	cases := []struct {
		gateway string
		want    types.TxStatus
	}{
		{"PENDING", types.TxStatusPending},
		{"PROCESSING", types.TxStatusPending},
		{"CONFIRMED", types.TxStatusConfirmed},
		{"FAILED", types.TxStatusFailed},
		{"SOMETHING_NEW", types.TxStatusError},
	}

	for _, tc := range cases {
		t.Run(tc.gateway, func(t *testing.T) {
			l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":      tc.gateway,
					"blockNumber": 12,
				})
			}))

			info, err := l.TransactionStatus(context.Background(), "vn_tx_1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, info.Status)
		})
	}
}

func TestTransactionStatusNotFound(t *testing.T) {
	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	info, err := l.TransactionStatus(context.Background(), "vn_missing")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusNotFound, info.Status)
}

func TestVerifyShipmentTrackingMismatch(t *testing.T) {
	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"shipmentId":     "SHIP-1",
			"trackingNumber": "TRK-STORED",
			"dataHash":       "abc",
			"timestamp":      1700000000,
		})
	}))

	result, err := l.VerifyShipment(context.Background(), "SHIP-1", "TRK-OTHER")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "Tracking number mismatch (stored: TRK-STORED)", result.Reason)
}

func TestVerifyEventShipmentMismatch(t *testing.T) {
	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"eventId":    "ev_1",
			"shipmentId": "SHIP-OTHER",
			"eventType":  "customs_cleared",
		})
	}))

	result, err := l.VerifyEvent(context.Background(), "SHIP-1", "ev_1")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "Shipment ID mismatch (stored: SHIP-OTHER)", result.Reason)
}

func TestVerifyDocumentNotFound(t *testing.T) {
	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	result, err := l.VerifyDocument(context.Background(), "missinghash")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, "Document not found on ledger", result.Reason)
}

func TestVerifyDocumentFound(t *testing.T) {
	l, _ := newTestLedger(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+documentsEndpoint+"/hash/dochash", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"documentHash":  "dochash",
			"timestamp":     1700000000,
			"transactionId": "vn_tx_doc",
		})
	}))

	result, err := l.VerifyDocument(context.Background(), "dochash")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.Equal(t, "vn_tx_doc", result.TxHash)
}
