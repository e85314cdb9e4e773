package ledgers

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	commontypes "github.com/tracepost/anchor-relay/common/types"
)

// nopLedger satisfies commontypes.Ledger for registry tests.
type nopLedger struct{ closed bool }

func (l *nopLedger) RegisterShipment(ctx context.Context, shipmentID, trackingNumber, dataHash, metadata string) (string, error) {
	return "", nil
}
func (l *nopLedger) RegisterEvent(ctx context.Context, shipmentID, eventID, eventType, dataHash, metadata string) (string, error) {
	return "", nil
}
func (l *nopLedger) RegisterDocument(ctx context.Context, documentHash, metadata string) (string, error) {
	return "", nil
}
func (l *nopLedger) TransactionStatus(ctx context.Context, txHash string) (*commontypes.TxStatusInfo, error) {
	return nil, nil
}
func (l *nopLedger) VerifyShipment(ctx context.Context, shipmentID, trackingNumber string) (*commontypes.VerificationResult, error) {
	return nil, nil
}
func (l *nopLedger) VerifyEvent(ctx context.Context, shipmentID, eventID string) (*commontypes.VerificationResult, error) {
	return nil, nil
}
func (l *nopLedger) VerifyDocument(ctx context.Context, documentHash string) (*commontypes.VerificationResult, error) {
	return nil, nil
}
func (l *nopLedger) Close() { l.closed = true }

type nopFactory struct {
	created []*nopLedger
}

func (f *nopFactory) RegisterConstructor(chainType commontypes.ChainType, constructor LedgerConstructor) {
}

func (f *nopFactory) CreateLedger(ctx context.Context, config *commontypes.LedgerConfig, logger *logrus.Logger) (commontypes.Ledger, error) {
	l := &nopLedger{}
	f.created = append(f.created, l)
	return l, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestRegistryAddGetRemove(t *testing.T) {
	factory := &nopFactory{}
	r := NewRegistry(factory, testLogger())

	require.NoError(t, r.Add(context.Background(), &commontypes.LedgerConfig{Name: commontypes.Ethereum}))

	got, err := r.Get(commontypes.Ethereum)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Len(t, r.Names(), 1)

	r.Remove(commontypes.Ethereum)
	_, err = r.Get(commontypes.Ethereum)
	assert.ErrorIs(t, err, commonerrors.ErrLedgerNotFound)
	require.Len(t, factory.created, 1)
	assert.True(t, factory.created[0].closed)
}

func TestRegistryAddDuplicate(t *testing.T) {
	r := NewRegistry(&nopFactory{}, testLogger())

	require.NoError(t, r.Add(context.Background(), &commontypes.LedgerConfig{Name: commontypes.Substrate}))
	err := r.Add(context.Background(), &commontypes.LedgerConfig{Name: commontypes.Substrate})
	require.Error(t, err)
	assert.ErrorIs(t, err, commonerrors.ErrLedgerExists)
}

func TestRegistryCloseAll(t *testing.T) {
	factory := &nopFactory{}
	r := NewRegistry(factory, testLogger())

	require.NoError(t, r.Add(context.Background(), &commontypes.LedgerConfig{Name: commontypes.Ethereum}))
	require.NoError(t, r.Add(context.Background(), &commontypes.LedgerConfig{Name: commontypes.Substrate}))

	r.CloseAll()
	assert.Empty(t, r.Names())
	for _, l := range factory.created {
		assert.True(t, l.closed)
	}
}
