package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	commonerrors "github.com/tracepost/anchor-relay/common/errors"
)

const (
	// gasPriceBumpPercent biases submissions toward timely inclusion by paying
	// slightly over the node's current estimate.
	gasPriceBumpPercent = 110
	// gasLimitBumpPercent pads the gas estimate to survive minor state drift
	// between estimation and inclusion.
	gasLimitBumpPercent = 110
)

// submitContractCall builds, signs and submits a contract-call transaction
// against the given contract and returns the transaction hash immediately.
// Nonce and gas price are fetched fresh per call; the caller polls
// confirmation separately.
//
// Parameters:
// - ctx: the context for managing the request.
// - contract: the target contract binding.
// - method: the contract method name.
// - args: the method arguments.
//
// Returns:
// - string: the transaction hash.
// - error: an error if packing, signing or submission fails.
func (l *ledger) submitContractCall(ctx context.Context, contract *boundContract, method string, args ...interface{}) (string, error) {
	client, err := l.getClient()
	if err != nil {
		return "", err
	}

	if l.signer == nil {
		return "", errors.Wrap(commonerrors.ErrNotConfigured, "signer not initialized")
	}

	data, err := contract.abi.Pack(method, args...)
	if err != nil {
		return "", errors.Wrapf(err, "failed to pack %s call data", method)
	}

	nonce, err := client.PendingNonceAt(ctx, l.signer.Address())
	if err != nil {
		return "", errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	gasPrice = new(big.Int).Mul(gasPrice, big.NewInt(gasPriceBumpPercent))
	gasPrice = new(big.Int).Div(gasPrice, big.NewInt(100))

	to := contract.address
	estimatedGas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: l.signer.Address(),
		To:   &to,
		Data: data,
	})
	if err != nil {
		return "", errors.Wrapf(commonerrors.ErrLedgerRejected, "gas estimation failed for %s: %v", method, err)
	}

	gasLimit := estimatedGas * gasLimitBumpPercent / 100

	tx := ethtypes.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, data)

	chainID := new(big.Int).SetUint64(l.config.ChainID)
	signedTx, err := l.signer.SignTx(tx, chainID)
	if err != nil {
		l.logger.WithError(err).Error("Failed to sign transaction")
		return "", errors.Wrap(err, "failed to sign transaction")
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		l.logger.WithError(err).Error("Failed to send transaction")
		return "", errors.Wrap(commonerrors.ErrConnectivity, err.Error())
	}

	return signedTx.Hash().Hex(), nil
}
