package errors

import "github.com/pkg/errors"

var (
	// ErrConnectivity marks node or API unreachability; the caller retries on
	// the next cycle.
	ErrConnectivity = errors.New("ledger unreachable")
	// ErrLedgerRejected marks a transaction the ledger included but reverted
	// or refused; surfaced per event, not retried automatically.
	ErrLedgerRejected = errors.New("transaction rejected by ledger")
	// ErrNotFound marks a query for an unknown handle or entity.
	ErrNotFound = errors.New("not found on ledger")
	// ErrNotConfigured marks a required client or contract that was never
	// initialized; fatal at construction.
	ErrNotConfigured = errors.New("ledger component not configured")

	ErrLedgerNotFound   = errors.New("ledger not found in registry")
	ErrLedgerExists     = errors.New("ledger already exists in registry")
	ErrInvalidChainType = errors.New("invalid chain type")
	ErrInvalidConfig    = errors.New("invalid ledger configuration")

	ErrBridgeNotFound = errors.New("bridge not found")
	ErrBridgeExists   = errors.New("bridge already exists")

	ErrDatabaseConnect = errors.New("failed to connect to database")
)

// IsConnectivity reports whether err is rooted in ErrConnectivity.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}

// IsNotFound reports whether err is rooted in ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
