package bridge

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// BurnID is the 32 byte correlation token linking a burn to its mint.
type BurnID [32]byte

// IsZero reports whether the id is unset. The token contract rejects zero ids.
func (b BurnID) IsZero() bool {
	return b == BurnID{}
}

// Hex returns the 0x prefixed hex form.
func (b BurnID) Hex() string {
	return hexutil.Encode(b[:])
}

func (b BurnID) String() string {
	return b.Hex()
}

// ParseBurnID decodes a 0x prefixed 32 byte hex string. An empty string yields the zero id.
func ParseBurnID(s string) (BurnID, error) {
	var id BurnID
	if s == "" {
		return id, nil
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return id, fmt.Errorf("invalid burn id %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid burn id %q: want 32 bytes, got %d", s, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

// BurnIDStrategy selects how fresh burn ids are derived. A deployment uses one strategy.
type BurnIDStrategy string

const (
	// BurnIDDeterministic hashes recipient, amount and the block context of the burn.
	BurnIDDeterministic BurnIDStrategy = "deterministic"
	// BurnIDRandom hashes recipient, amount, a timestamp and 32 random bytes.
	BurnIDRandom BurnIDStrategy = "random"
)

// BurnContext is the input to burn id derivation.
type BurnContext struct {
	Recipient string
	Amount    string
	// SourceTransactionHash or BlockHash anchor the deterministic strategy.
	SourceTransactionHash string
	BlockHash             string
	// Salt distinguishes repeated derivations for the same transfer, e.g. a recovery attempt.
	Salt uint64
}

// Deriver produces burn ids with a fixed strategy.
type Deriver struct {
	strategy BurnIDStrategy
	now      func() time.Time
}

// NewDeriver returns a deriver for the given strategy.
func NewDeriver(strategy BurnIDStrategy) (*Deriver, error) {
	switch strategy {
	case BurnIDDeterministic, BurnIDRandom:
	default:
		return nil, fmt.Errorf("unknown burn id strategy %q", strategy)
	}
	return &Deriver{strategy: strategy, now: time.Now}, nil
}

// Strategy returns the configured strategy.
func (d *Deriver) Strategy() BurnIDStrategy {
	return d.strategy
}

// Derive returns a fresh non-zero burn id.
func (d *Deriver) Derive(c BurnContext) (BurnID, error) {
	amount, ok := new(big.Int).SetString(c.Amount, 10)
	if !ok {
		return BurnID{}, fmt.Errorf("invalid amount %q", c.Amount)
	}
	recipient := common.HexToAddress(c.Recipient)

	salt := make([]byte, 8)
	binary.BigEndian.PutUint64(salt, c.Salt)

	parts := [][]byte{
		recipient.Bytes(),
		common.LeftPadBytes(amount.Bytes(), 32),
	}

	switch d.strategy {
	case BurnIDDeterministic:
		anchor := c.SourceTransactionHash
		if anchor == "" {
			anchor = c.BlockHash
		}
		if anchor == "" {
			return BurnID{}, fmt.Errorf("deterministic burn id needs a source transaction or block hash")
		}
		parts = append(parts, common.HexToHash(strings.TrimSpace(anchor)).Bytes(), salt)
	case BurnIDRandom:
		nonce := make([]byte, 32)
		if _, err := rand.Read(nonce); err != nil {
			return BurnID{}, fmt.Errorf("failed to read random nonce: %w", err)
		}
		ts := make([]byte, 8)
		binary.BigEndian.PutUint64(ts, uint64(d.now().UnixNano()))
		parts = append(parts, ts, nonce, salt)
	}

	var id BurnID
	copy(id[:], crypto.Keccak256(parts...))
	return id, nil
}
