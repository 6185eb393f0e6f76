package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

// EventKind distinguishes the two token events the bridge reacts to.
type EventKind string

const (
	EventBurned EventKind = "TokensBurned"
	EventMinted EventKind = "TokensMinted"
)

// TokenEvent is a decoded TokensBurned or TokensMinted log.
type TokenEvent struct {
	Kind    EventKind
	Network bridge.Network
	// Account is the burner for TokensBurned and the recipient for TokensMinted.
	Account     common.Address
	Amount      *big.Int
	BurnID      bridge.BurnID
	TxHash      common.Hash
	BlockHash   common.Hash
	BlockNumber uint64
	LogIndex    uint
	Removed     bool
}
