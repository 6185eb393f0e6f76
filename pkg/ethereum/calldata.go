package ethereum

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
	"github.com/chainsafe/burnmint-bridge/pkg/ethereum/contracts"
)

var (
	tokenABI = mustParseABI(contracts.BridgeTokenMetaData.ABI)

	// TokensBurnedTopic and TokensMintedTopic are the event signatures watched on every chain.
	TokensBurnedTopic = tokenABI.Events[string(EventBurned)].ID
	TokensMintedTopic = tokenABI.Events[string(EventMinted)].ID

	// ErrUnknownEvent is returned for logs that are not a token bridge event.
	ErrUnknownEvent = errors.New("log is not a bridge token event")
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid bridge token abi: %v", err))
	}
	return parsed
}

// PackMint encodes a mint(to, amount, burnId) call.
func PackMint(to common.Address, amount *big.Int, burnID bridge.BurnID) ([]byte, error) {
	if burnID.IsZero() {
		return nil, errors.New("burn id must not be zero")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("mint amount must be positive")
	}
	data, err := tokenABI.Pack("mint", to, amount, [32]byte(burnID))
	if err != nil {
		return nil, fmt.Errorf("failed to pack mint call: %w", err)
	}
	return data, nil
}

// PackBurn encodes a burn(from, amount) call for the user's wallet to sign.
func PackBurn(from common.Address, amount *big.Int) ([]byte, error) {
	if from == (common.Address{}) {
		return nil, errors.New("burn from the zero address")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("burn amount must be positive")
	}
	data, err := tokenABI.Pack("burn", from, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack burn call: %w", err)
	}
	return data, nil
}

// TokenEventQuery returns the filter for both token events on one contract.
// A nil to means "up to the head" for FilterLogs, and is required for subscriptions.
func TokenEventQuery(token common.Address, from uint64, to *uint64) geth.FilterQuery {
	q := geth.FilterQuery{
		Addresses: []common.Address{token},
		Topics:    [][]common.Hash{{TokensBurnedTopic, TokensMintedTopic}},
	}
	q.FromBlock = new(big.Int).SetUint64(from)
	if to != nil {
		q.ToBlock = new(big.Int).SetUint64(*to)
	}
	return q
}

// ParseTokenEvent decodes a TokensBurned or TokensMinted log.
func ParseTokenEvent(network bridge.Network, log types.Log) (*TokenEvent, error) {
	if len(log.Topics) == 0 {
		return nil, ErrUnknownEvent
	}
	filterer, err := contracts.NewBridgeTokenFilterer(log.Address, nil)
	if err != nil {
		return nil, err
	}

	ev := &TokenEvent{
		Network:     network,
		TxHash:      log.TxHash,
		BlockHash:   log.BlockHash,
		BlockNumber: log.BlockNumber,
		LogIndex:    log.Index,
		Removed:     log.Removed,
	}
	switch log.Topics[0] {
	case TokensBurnedTopic:
		burned, err := filterer.ParseTokensBurned(log)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TokensBurned: %w", err)
		}
		ev.Kind = EventBurned
		ev.Account = burned.From
		ev.Amount = burned.Amount
		ev.BurnID = bridge.BurnID(burned.BurnId)
	case TokensMintedTopic:
		minted, err := filterer.ParseTokensMinted(log)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TokensMinted: %w", err)
		}
		ev.Kind = EventMinted
		ev.Account = minted.To
		ev.Amount = minted.Amount
		ev.BurnID = bridge.BurnID(minted.BurnId)
	default:
		return nil, ErrUnknownEvent
	}
	return ev, nil
}
