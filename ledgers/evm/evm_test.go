package evm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
	"github.com/tracepost/anchor-relay/ledgers/evm/generated"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestContractABIsParse(t *testing.T) {
	registry, err := abi.JSON(strings.NewReader(generated.ShipmentRegistryABI))
	require.NoError(t, err)
	assert.Contains(t, registry.Methods, "registerShipment")
	assert.Contains(t, registry.Methods, "getShipment")
	assert.Contains(t, registry.Events, "ShipmentRegistered")

	eventLog, err := abi.JSON(strings.NewReader(generated.EventLogABI))
	require.NoError(t, err)
	assert.Contains(t, eventLog.Methods, "logEvent")
	assert.Contains(t, eventLog.Methods, "logDocument")
	assert.Contains(t, eventLog.Events, "EventLogged")
	assert.Contains(t, eventLog.Events, "DocumentLogged")
}

func TestNewLedgerRequiresContractAddress(t *testing.T) {
	_, err := NewLedger(context.Background(), &types.LedgerConfig{
		Name:      types.Ethereum,
		ChainType: types.EVM,
		NodeURL:   "http://localhost:9",
	}, testLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, commonerrors.ErrNotConfigured)
}

func TestDecodeEventLogged(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(generated.EventLogABI))
	require.NoError(t, err)

	l := &ledger{
		config: &types.LedgerConfig{Name: types.Ethereum},
		logger: testLogger(),
	}

	ev := parsed.Events["EventLogged"]
	data, err := ev.Inputs.Pack("ev_1", "SHIP-1", "customs_cleared", "abc123")
	require.NoError(t, err)

	entry := ethtypes.Log{
		Data:        data,
		BlockNumber: 42,
		TxHash:      common.HexToHash("0x01"),
		Topics:      []common.Hash{ev.ID},
	}

	event, err := l.decodeEventLogged(ev, entry)
	require.NoError(t, err)

	assert.Equal(t, "ev_1", event.EventID)
	assert.Equal(t, "SHIP-1", event.ShipmentID)
	assert.Equal(t, "customs_cleared", event.EventType)
	assert.Equal(t, uint64(42), event.BlockNumber)
	assert.Equal(t, types.Ethereum, event.SourceChain)
	assert.False(t, event.DiscoveredAt.IsZero())
}

func TestDecodeEventLoggedBadData(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(generated.EventLogABI))
	require.NoError(t, err)

	l := &ledger{
		config: &types.LedgerConfig{Name: types.Ethereum},
		logger: testLogger(),
	}

	_, err = l.decodeEventLogged(parsed.Events["EventLogged"], ethtypes.Log{Data: []byte{0x01, 0x02}})
	require.Error(t, err)
}

// fakeNode answers the JSON-RPC methods a status query needs with canned
// results or errors.
type fakeNode struct {
	results map[string]string
	errs    map[string]string
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if msg, ok := n.errs[req.Method]; ok {
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32000,"message":%q}}`, req.ID, msg)
		return
	}
	result, ok := n.results[req.Method]
	if !ok {
		result = "null"
	}
	fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
}

func newStatusTestLedger(t *testing.T, node *fakeNode) *ledger {
	t.Helper()

	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	client, err := ethclient.Dial(server.URL)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return &ledger{
		config: &types.LedgerConfig{Name: types.Ethereum, ChainID: 1},
		logger: testLogger(),
		client: client,
	}
}

func receiptJSON(status string, blockNumber string) string {
	bloom := "0x" + strings.Repeat("0", 512)
	return fmt.Sprintf(`{
		"type": "0x0",
		"status": %q,
		"cumulativeGasUsed": "0x5208",
		"logsBloom": %q,
		"logs": [],
		"transactionHash": "0x%s",
		"contractAddress": null,
		"gasUsed": "0x5208",
		"effectiveGasPrice": "0x3b9aca00",
		"blockHash": "0x%s",
		"blockNumber": %q,
		"transactionIndex": "0x0"
	}`, status, bloom, strings.Repeat("aa", 32), strings.Repeat("bb", 32), blockNumber)
}

func pendingTxJSON() string {
	return fmt.Sprintf(`{
		"type": "0x0",
		"nonce": "0x0",
		"gasPrice": "0x3b9aca00",
		"gas": "0x5208",
		"to": "0x0000000000000000000000000000000000000001",
		"value": "0x0",
		"input": "0x",
		"v": "0x1b",
		"r": "0x1",
		"s": "0x1",
		"hash": "0x%s",
		"from": "0x0000000000000000000000000000000000000002",
		"blockHash": null,
		"blockNumber": null,
		"transactionIndex": null
	}`, strings.Repeat("aa", 32))
}

func TestTransactionStatusConfirmed(t *testing.T) {
	l := newStatusTestLedger(t, &fakeNode{results: map[string]string{
		"eth_getTransactionReceipt": receiptJSON("0x1", "0x64"),
		"eth_blockNumber":           `"0x6e"`,
	}})

	info, err := l.TransactionStatus(context.Background(), "0x"+strings.Repeat("aa", 32))
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusConfirmed, info.Status)
	assert.Equal(t, uint64(100), info.BlockNumber)
	assert.Equal(t, uint64(10), info.Confirmations)
	assert.Equal(t, "ethereum", info.Network)
}

func TestTransactionStatusFailedReceipt(t *testing.T) {
	l := newStatusTestLedger(t, &fakeNode{results: map[string]string{
		"eth_getTransactionReceipt": receiptJSON("0x0", "0x64"),
		"eth_blockNumber":           `"0x6e"`,
	}})

	info, err := l.TransactionStatus(context.Background(), "0x"+strings.Repeat("aa", 32))
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusFailed, info.Status)
}

func TestTransactionStatusPendingUnmined(t *testing.T) {
	l := newStatusTestLedger(t, &fakeNode{results: map[string]string{
		"eth_getTransactionByHash": pendingTxJSON(),
	}})

	info, err := l.TransactionStatus(context.Background(), "0x"+strings.Repeat("aa", 32))
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusPending, info.Status)
}

func TestTransactionStatusUnknownHash(t *testing.T) {
	l := newStatusTestLedger(t, &fakeNode{})

	info, err := l.TransactionStatus(context.Background(), "0x"+strings.Repeat("cc", 32))
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusNotFound, info.Status)
}

func TestTransactionStatusNodeError(t *testing.T) {
	l := newStatusTestLedger(t, &fakeNode{errs: map[string]string{
		"eth_getTransactionReceipt": "node is syncing",
	}})

	info, err := l.TransactionStatus(context.Background(), "0x"+strings.Repeat("aa", 32))
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusError, info.Status)
	assert.Contains(t, info.Err, "node is syncing")
}

func TestNetworkName(t *testing.T) {
	cases := []struct {
		chainID uint64
		want    string
	}{
		{1, "ethereum"},
		{11155111, "sepolia"},
		{137, "polygon"},
		{31337, "chain_31337"},
	}

	for _, tc := range cases {
		l := &ledger{config: &types.LedgerConfig{ChainID: tc.chainID}}
		assert.Equal(t, tc.want, l.networkName())
	}
}
