package substrate

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepost/anchor-relay/common/types"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func newSubmissionTestLedger() *ledger {
	return &ledger{
		config:      &types.LedgerConfig{Name: types.Substrate, ChainType: types.SUBSTRATE},
		logger:      testLogger(),
		submissions: make(map[string]*types.TxStatusInfo),
	}
}

func TestTransactionStatusMapping(t *testing.T) {
	cases := []types.TxStatus{
		types.TxStatusPending,
		types.TxStatusConfirmed,
		types.TxStatusFailed,
		types.TxStatusError,
	}

	for _, want := range cases {
		t.Run(string(want), func(t *testing.T) {
			l := newSubmissionTestLedger()
			l.recordSubmission("0xabc", want, 0)

			info, err := l.TransactionStatus(context.Background(), "0xabc")
			require.NoError(t, err)
			assert.Equal(t, want, info.Status)
			assert.Equal(t, "0xabc", info.TxHash)
			assert.Equal(t, "substrate", info.Network)
		})
	}
}

func TestTransactionStatusUnknownHash(t *testing.T) {
	l := newSubmissionTestLedger()

	info, err := l.TransactionStatus(context.Background(), "0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusNotFound, info.Status)
}

func TestTransactionStatusFollowsInclusion(t *testing.T) {
	l := newSubmissionTestLedger()

	l.recordSubmission("0xabc", types.TxStatusPending, 0)
	info, err := l.TransactionStatus(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusPending, info.Status)

	l.recordSubmission("0xabc", types.TxStatusConfirmed, 0)
	info, err = l.TransactionStatus(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusConfirmed, info.Status)
}

func TestTransactionStatusReturnsCopy(t *testing.T) {
	l := newSubmissionTestLedger()
	l.recordSubmission("0xabc", types.TxStatusConfirmed, 0)

	info, err := l.TransactionStatus(context.Background(), "0xabc")
	require.NoError(t, err)
	info.Status = types.TxStatusFailed

	again, err := l.TransactionStatus(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusConfirmed, again.Status)
}
