package relay

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Authorizer attaches the credentials the relay needs to accept a call.
type Authorizer interface {
	Authorize(ctx context.Context, req *CallRequest) error
}

// SponsorKey authorizes calls with the sponsor API key alone.
type SponsorKey struct {
	apiKey string
}

// NewSponsorKey creates a SponsorKey authorizer.
func NewSponsorKey(apiKey string) *SponsorKey {
	return &SponsorKey{apiKey: apiKey}
}

func (s *SponsorKey) Authorize(_ context.Context, req *CallRequest) error {
	if s.apiKey == "" {
		return ErrMissingCredentials
	}
	req.SponsorAPIKey = s.apiKey
	return nil
}

// NonceReader reads the relay forwarder's replay-protection nonce for a user.
type NonceReader interface {
	UserNonce(ctx context.Context, chainID uint64, user common.Address) (*big.Int, error)
}

// ERC2771 signs calls as the bridge operator so the token contract sees the
// operator as the original sender.
type ERC2771 struct {
	apiKey     string
	key        *ecdsa.PrivateKey
	operator   common.Address
	forwarders map[uint64]common.Address
	nonces     NonceReader
	deadline   time.Duration
	now        func() time.Time
}

// NewERC2771 creates an ERC2771 authorizer. forwarders maps chain id to the
// relay's forwarder contract, the EIP-712 verifying contract.
func NewERC2771(apiKey string, key *ecdsa.PrivateKey, forwarders map[uint64]common.Address, nonces NonceReader, deadline time.Duration) *ERC2771 {
	return &ERC2771{
		apiKey:     apiKey,
		key:        key,
		operator:   crypto.PubkeyToAddress(key.PublicKey),
		forwarders: forwarders,
		nonces:     nonces,
		deadline:   deadline,
		now:        time.Now,
	}
}

// Operator returns the address calls are made on behalf of.
func (e *ERC2771) Operator() common.Address {
	return e.operator
}

func (e *ERC2771) Authorize(ctx context.Context, req *CallRequest) error {
	if e.apiKey == "" {
		return ErrMissingCredentials
	}
	forwarder, ok := e.forwarders[req.ChainID]
	if !ok {
		return fmt.Errorf("no relay forwarder configured for chain %d", req.ChainID)
	}

	nonce, err := e.nonces.UserNonce(ctx, req.ChainID, e.operator)
	if err != nil {
		return fmt.Errorf("failed to read user nonce: %w", err)
	}
	deadline := uint64(e.now().Add(e.deadline).Unix())

	typed := sponsoredCallTypedData(req.ChainID, forwarder, req.Target, req.Data, e.operator, nonce, deadline)
	hash, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return fmt.Errorf("failed to hash typed data: %w", err)
	}
	sig, err := crypto.Sign(hash, e.key)
	if err != nil {
		return fmt.Errorf("failed to sign relay request: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	user := e.operator
	req.SponsorAPIKey = e.apiKey
	req.User = &user
	req.UserNonce = nonce
	req.UserDeadline = deadline
	req.UserSignature = sig
	return nil
}

func sponsoredCallTypedData(chainID uint64, forwarder, target common.Address, data []byte, user common.Address, nonce *big.Int, deadline uint64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"SponsoredCallERC2771": {
				{Name: "chainId", Type: "uint256"},
				{Name: "target", Type: "address"},
				{Name: "data", Type: "bytes"},
				{Name: "user", Type: "address"},
				{Name: "userNonce", Type: "uint256"},
				{Name: "userDeadline", Type: "uint256"},
			},
		},
		PrimaryType: "SponsoredCallERC2771",
		Domain: apitypes.TypedDataDomain{
			Name:              "GelatoRelay1BalanceERC2771",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: forwarder.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"chainId":      strconv.FormatUint(chainID, 10),
			"target":       target.Hex(),
			"data":         hexutil.Encode(data),
			"user":         user.Hex(),
			"userNonce":    nonce.String(),
			"userDeadline": strconv.FormatUint(deadline, 10),
		},
	}
}
