package types

// ChainName identifies a supported ledger. It is an opaque value used as a
// map key throughout the bridge layer.
type ChainName string

const (
	// Ethereum represents the account-based smart-contract chain.
	Ethereum ChainName = "ethereum"
	// Substrate represents the pallet/extrinsic-based chain.
	Substrate ChainName = "substrate"
	// VietnamChain represents the permissioned REST-API ledger.
	VietnamChain ChainName = "vietnamchain"
)

// String converts ChainName to string representation.
func (n ChainName) String() string {
	return string(n)
}

// ChainType represents supported ledger families.
type ChainType string

const (
	// EVM represents Ethereum Virtual Machine based chains.
	EVM ChainType = "EVM"
	// SUBSTRATE represents Substrate pallet based chains.
	SUBSTRATE ChainType = "SUBSTRATE"
	// RESTLEDGER represents permissioned ledgers exposed over a signed REST API.
	RESTLEDGER ChainType = "RESTLEDGER"
	// UNKNOWN represents unknown or unsupported chain type in the system.
	UNKNOWN ChainType = "UNKNOWN"
)

// String converts ChainType to string representation.
func (t ChainType) String() string {
	return string(t)
}

// ParseChainType converts string to ChainType representation.
func ParseChainType(s string) ChainType {
	switch s {
	case EVM.String():
		return EVM
	case SUBSTRATE.String():
		return SUBSTRATE
	case RESTLEDGER.String():
		return RESTLEDGER
	default:
		return UNKNOWN
	}
}
