package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepost/anchor-relay/anchorstore/models"
	"github.com/tracepost/anchor-relay/bridge"
	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/ledgers"
)

// stubLedger is an in-memory ledger with an event log.
type stubLedger struct{}

func (stubLedger) RegisterShipment(ctx context.Context, shipmentID, trackingNumber, dataHash, metadata string) (string, error) {
	return "0x1", nil
}
func (stubLedger) RegisterEvent(ctx context.Context, shipmentID, eventID, eventType, dataHash, metadata string) (string, error) {
	return "0x2", nil
}
func (stubLedger) RegisterDocument(ctx context.Context, documentHash, metadata string) (string, error) {
	return "0x3", nil
}
func (stubLedger) TransactionStatus(ctx context.Context, txHash string) (*types.TxStatusInfo, error) {
	return &types.TxStatusInfo{TxHash: txHash, Status: types.TxStatusConfirmed}, nil
}
func (stubLedger) VerifyShipment(ctx context.Context, shipmentID, trackingNumber string) (*types.VerificationResult, error) {
	return &types.VerificationResult{Verified: true}, nil
}
func (stubLedger) VerifyEvent(ctx context.Context, shipmentID, eventID string) (*types.VerificationResult, error) {
	return &types.VerificationResult{Verified: false, Reason: "Event not found on ledger"}, nil
}
func (stubLedger) VerifyDocument(ctx context.Context, documentHash string) (*types.VerificationResult, error) {
	return &types.VerificationResult{Verified: true}, nil
}
func (stubLedger) Close() {}
func (stubLedger) HeadBlock(ctx context.Context) (uint64, error) {
	return 100, nil
}
func (stubLedger) Events(ctx context.Context, fromBlock, toBlock uint64) ([]types.ChainEvent, error) {
	return nil, nil
}

// stubFactory hands out stubLedgers regardless of configuration.
type stubFactory struct{}

func (stubFactory) RegisterConstructor(chainType types.ChainType, constructor ledgers.LedgerConstructor) {
}

func (stubFactory) CreateLedger(ctx context.Context, config *types.LedgerConfig, logger *logrus.Logger) (types.Ledger, error) {
	return stubLedger{}, nil
}

// stubDirectory is a canned anchor-status collaborator.
type stubDirectory struct {
	events  map[string]*models.Event
	anchors []models.AnchorResult
}

func (d *stubDirectory) LookupEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, ok := d.events[eventID]
	if !ok {
		return nil, commonerrors.ErrNotFound
	}
	return event, nil
}

func (d *stubDirectory) AnchorResults(ctx context.Context, entityKind types.EntityKind, entityID string) ([]models.AnchorResult, error) {
	return d.anchors, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func newTestServer(t *testing.T) (*httptest.Server, *bridge.Manager) {
	return newTestServerWithDirectory(t, nil)
}

func newTestServerWithDirectory(t *testing.T, directory AnchorDirectory) (*httptest.Server, *bridge.Manager) {
	t.Helper()

	logger := testLogger()
	registry := ledgers.NewRegistry(stubFactory{}, logger)
	for _, name := range []types.ChainName{types.Ethereum, types.Substrate} {
		require.NoError(t, registry.Add(context.Background(), &types.LedgerConfig{Name: name}))
	}

	manager := bridge.NewManager(logger)
	handlers := NewHandlers(manager, registry, nil, directory, logger)

	server := httptest.NewServer(handlers.Router())
	t.Cleanup(func() {
		manager.StopAll()
		server.Close()
	})
	return server, manager
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateBridge(t *testing.T) {
	server, manager := newTestServer(t)

	resp := postJSON(t, server.URL+"/bridges", map[string]interface{}{
		"source":              "ethereum",
		"target":              "substrate",
		"confirmation_blocks": 6,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, []interface{}{"ethereum_to_substrate"}, body["bridges"])

	_, err := manager.GetBridge("ethereum_to_substrate")
	require.NoError(t, err)
}

func TestCreateTwoWayBridge(t *testing.T) {
	server, manager := newTestServer(t)

	resp := postJSON(t, server.URL+"/bridges", map[string]interface{}{
		"source":  "ethereum",
		"target":  "substrate",
		"two_way": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	_, err := manager.GetBridge("ethereum_to_substrate")
	require.NoError(t, err)
	_, err = manager.GetBridge("substrate_to_ethereum")
	require.NoError(t, err)
}

func TestCreateBridgeUnknownLedger(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/bridges", map[string]interface{}{
		"source": "ethereum",
		"target": "tendermint",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateBridgeDuplicate(t *testing.T) {
	server, _ := newTestServer(t)

	req := map[string]interface{}{"source": "ethereum", "target": "substrate"}
	resp := postJSON(t, server.URL+"/bridges", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/bridges", req)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestStartStopViaHTTP(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/bridges", map[string]interface{}{
		"source": "ethereum", "target": "substrate", "poll_interval_seconds": 3600,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["started"])

	// Second start reports started=false.
	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/start", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["started"])

	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["stopped"])

	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["stopped"])
}

func TestBridgeStatusNotFound(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/bridges/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVerifyBridgedEvent(t *testing.T) {
	server, _ := newTestServer(t)

	resp := postJSON(t, server.URL+"/bridges", map[string]interface{}{
		"source": "ethereum", "target": "substrate",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/verify", map[string]interface{}{
		"bridge_id":         "bridge_ethereum_deadbeef",
		"original_event_id": "ev_1",
		"shipment_id":       "SHIP-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, false, body["verified"])
	assert.Equal(t, false, body["target_verified"])
}

func TestVerifyBridgedEventResolvesShipmentID(t *testing.T) {
	directory := &stubDirectory{
		events: map[string]*models.Event{
			"ev_1": {EventID: "ev_1", ShipmentID: "SHIP-1", EventType: "pickup"},
		},
	}
	server, _ := newTestServerWithDirectory(t, directory)

	resp := postJSON(t, server.URL+"/bridges", map[string]interface{}{
		"source": "ethereum", "target": "substrate",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Shipment id omitted, looked up through the directory.
	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/verify", map[string]interface{}{
		"bridge_id":         "bridge_ethereum_deadbeef",
		"original_event_id": "ev_1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp)

	// Unknown event ids surface as 404.
	resp = postJSON(t, server.URL+"/bridges/ethereum_to_substrate/verify", map[string]interface{}{
		"bridge_id":         "bridge_ethereum_deadbeef",
		"original_event_id": "ev_missing",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnchorResults(t *testing.T) {
	directory := &stubDirectory{
		anchors: []models.AnchorResult{
			{EntityKind: "event", EntityID: "ev_1", TxHash: "0x2", Ledger: "substrate", Status: "pending"},
		},
	}
	server, _ := newTestServerWithDirectory(t, directory)

	resp, err := http.Get(server.URL + "/anchors/event/ev_1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Len(t, body["anchors"], 1)

	resp, err = http.Get(server.URL + "/anchors/warehouse/ev_1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnchorResultsWithoutStore(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/anchors/event/ev_1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestState(t *testing.T) {
	server, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/state")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Len(t, body["ledgers"], 2)
}
