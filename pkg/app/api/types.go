package api

import (
	"time"

	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

// Transaction is the API view of a ledger row.
type Transaction struct {
	ID                    string    `json:"id"`
	Recipient             string    `json:"recipient"`
	Amount                string    `json:"amount"`
	SourceNetwork         string    `json:"sourceNetwork"`
	TargetNetwork         string    `json:"targetNetwork"`
	SourceTransactionHash string    `json:"sourceTransactionHash,omitempty"`
	TargetTransactionHash string    `json:"targetTransactionHash,omitempty"`
	Status                string    `json:"status"`
	RelayTaskID           string    `json:"relayTaskId,omitempty"`
	BurnID                string    `json:"burnId,omitempty"`
	RecoveryAttempts      int       `json:"recoveryAttempts"`
	LastError             string    `json:"lastError,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func toTransaction(tx *bridge.Transaction) Transaction {
	out := Transaction{
		ID:                    tx.ID,
		Recipient:             tx.Recipient,
		Amount:                tx.Amount,
		SourceNetwork:         tx.SourceNetwork.String(),
		TargetNetwork:         tx.TargetNetwork.String(),
		SourceTransactionHash: tx.SourceTransactionHash,
		TargetTransactionHash: tx.TargetTransactionHash,
		Status:                string(tx.Status),
		RelayTaskID:           tx.RelayTaskID,
		RecoveryAttempts:      tx.RecoveryAttempts,
		LastError:             tx.LastError,
		CreatedAt:             tx.CreatedAt,
		UpdatedAt:             tx.UpdatedAt,
	}
	if !tx.BurnID.IsZero() {
		out.BurnID = tx.BurnID.Hex()
	}
	return out
}

// ListResponse is a page of ledger rows, newest first.
type ListResponse struct {
	Transactions []Transaction `json:"transactions"`
	Limit        int           `json:"limit"`
	Offset       int           `json:"offset"`
}

// BridgeRequest asks for the burn call that starts a transfer. Amount is in
// token units, e.g. "1.5".
type BridgeRequest struct {
	Recipient     string `json:"recipient" validate:"required,eth_addr"`
	Amount        string `json:"amount" validate:"required,numeric"`
	SourceNetwork string `json:"sourceNetwork" validate:"required"`
	TargetNetwork string `json:"targetNetwork" validate:"required,nefield=SourceNetwork"`
}

// BridgeResponse is the unsigned burn call for the user's wallet. Amount is in base units.
type BridgeResponse struct {
	ChainID uint64 `json:"chainId"`
	To      string `json:"to"`
	Data    string `json:"data"`
	Amount  string `json:"amount"`
}
