package substrate

import (
	"context"
	"encoding/hex"

	subtypes "github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
	"github.com/tracepost/anchor-relay/common/types"
)

// submitCall signs and submits a pallet call. When the ledger is configured
// with WaitForInclusion the call blocks until the extrinsic reaches a block;
// otherwise it returns right after the node accepts the extrinsic.
//
// Parameters:
// - ctx: the context for managing the request.
// - callName: the pallet call in "Pallet.call" form.
// - args: SCALE-encodable call arguments.
//
// Returns:
// - string: the hex-encoded extrinsic hash.
// - error: an error if signing or submission fails.
func (l *ledger) submitCall(ctx context.Context, callName string, args ...interface{}) (string, error) {
	if l.keypair.Address == "" {
		return "", errors.Wrap(commonerrors.ErrNotConfigured, "no signing keypair configured")
	}

	api, err := l.getAPI()
	if err != nil {
		return "", err
	}
	meta, err := l.getMetadata()
	if err != nil {
		return "", err
	}

	call, err := subtypes.NewCall(meta, callName, args...)
	if err != nil {
		return "", errors.Wrapf(err, "failed to compose call %s", callName)
	}
	ext := subtypes.NewExtrinsic(call)

	genesisHash, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return "", errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}
	rv, err := api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return "", errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	// Fresh nonce per call so concurrent anchors from other processes using
	// the same account do not collide.
	key, err := subtypes.CreateStorageKey(meta, "System", "Account", l.keypair.PublicKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to create account storage key")
	}
	var accountInfo subtypes.AccountInfo
	ok, err := api.RPC.State.GetStorageLatest(key, &accountInfo)
	if err != nil || !ok {
		return "", errors.Wrap(commonerrors.ErrConnectivity, "failed to fetch account nonce")
	}

	o := subtypes.SignatureOptions{
		BlockHash:          genesisHash,
		Era:                subtypes.ExtrinsicEra{IsImmortalEra: true},
		GenesisHash:        genesisHash,
		Nonce:              subtypes.NewUCompactFromUInt(uint64(accountInfo.Nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                subtypes.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}

	if err := ext.Sign(l.keypair, o); err != nil {
		return "", errors.Wrap(err, "failed to sign extrinsic")
	}

	txHash, err := extrinsicHash(ext)
	if err != nil {
		return "", err
	}

	if l.config.WaitForInclusion {
		if err := l.watchExtrinsic(ctx, ext, txHash, callName); err != nil {
			return "", err
		}
		return txHash, nil
	}

	if _, err := api.RPC.Author.SubmitExtrinsic(ext); err != nil {
		return "", errors.Wrap(commonerrors.ErrLedgerRejected, err.Error())
	}
	l.recordSubmission(txHash, types.TxStatusPending, 0)

	l.logger.WithFields(logrus.Fields{
		"ledger":  l.config.Name,
		"call":    callName,
		"tx_hash": txHash,
	}).Info("Extrinsic submitted")

	return txHash, nil
}

// watchExtrinsic submits the extrinsic and subscribes to its status updates
// until a terminal state is reached.
func (l *ledger) watchExtrinsic(ctx context.Context, ext subtypes.Extrinsic, txHash, callName string) error {
	api, err := l.getAPI()
	if err != nil {
		return err
	}

	sub, err := api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return errors.Wrap(commonerrors.ErrLedgerRejected, err.Error())
	}
	defer sub.Unsubscribe()

	l.recordSubmission(txHash, types.TxStatusPending, 0)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-sub.Err():
			l.recordSubmission(txHash, types.TxStatusError, 0)
			return errors.Wrap(commonerrors.ErrConnectivity, err.Error())

		case status := <-sub.Chan():
			switch {
			case status.IsInBlock:
				l.recordSubmission(txHash, types.TxStatusConfirmed, 0)
				l.logger.WithFields(logrus.Fields{
					"ledger":  l.config.Name,
					"call":    callName,
					"tx_hash": txHash,
					"block":   status.AsInBlock.Hex(),
				}).Info("Extrinsic included in block")
				return nil

			case status.IsDropped, status.IsInvalid:
				l.recordSubmission(txHash, types.TxStatusFailed, 0)
				return errors.Wrapf(commonerrors.ErrLedgerRejected, "extrinsic %s dropped or invalid", txHash)
			}
		}
	}
}

// recordSubmission stores the latest known status for an extrinsic hash.
func (l *ledger) recordSubmission(txHash string, status types.TxStatus, blockNumber uint64) {
	l.submissionsMutex.Lock()
	defer l.submissionsMutex.Unlock()

	l.submissions[txHash] = &types.TxStatusInfo{
		TxHash:      txHash,
		Status:      status,
		BlockNumber: blockNumber,
		Network:     l.config.Name.String(),
	}
}

// extrinsicHash computes the canonical extrinsic hash from the signed
// SCALE encoding.
func extrinsicHash(ext subtypes.Extrinsic) (string, error) {
	enc, err := codec.Encode(ext)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode extrinsic")
	}
	sum := blake2b.Sum256(enc)
	return "0x" + hex.EncodeToString(sum[:]), nil
}
