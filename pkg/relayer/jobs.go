package relayer

import (
	"github.com/chainsafe/burnmint-bridge/pkg/bridge"
)

// DispatchJob asks the dispatcher to submit the mint for a PENDING row.
type DispatchJob struct {
	RowID         string         `json:"row_id"`
	Recipient     string         `json:"recipient"`
	Amount        string         `json:"amount"`
	BurnID        string         `json:"burn_id,omitempty"`
	SourceNetwork bridge.Network `json:"source_network"`
	TargetNetwork bridge.Network `json:"target_network"`
	SourceTxHash  string         `json:"source_tx_hash"`
	// Deferrals counts rate-limit deferrals. They never count as retries.
	Deferrals int `json:"deferrals,omitempty"`
}

// StatusCheckJob polls one relay task. TaskID is the task the job was
// created for; the row may have moved on to a newer one since.
type StatusCheckJob struct {
	RowID      string `json:"row_id"`
	TaskID     string `json:"task_id"`
	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
	Recovery   bool   `json:"recovery,omitempty"`
	Deferrals  int    `json:"deferrals,omitempty"`
}

// RecoveryJob resubmits the mint for a FAILED row. It carries everything needed
// to rebuild the call, independent of the original dispatch.
type RecoveryJob struct {
	RowID         string         `json:"row_id"`
	Recipient     string         `json:"recipient"`
	Amount        string         `json:"amount"`
	SourceNetwork bridge.Network `json:"source_network"`
	TargetNetwork bridge.Network `json:"target_network"`
	BurnID        string         `json:"burn_id,omitempty"`
	Attempt       int            `json:"attempt"`
	Deferrals     int            `json:"deferrals,omitempty"`
}

func dispatchJobFor(tx *bridge.Transaction) DispatchJob {
	job := DispatchJob{
		RowID:         tx.ID,
		Recipient:     tx.Recipient,
		Amount:        tx.Amount,
		SourceNetwork: tx.SourceNetwork,
		TargetNetwork: tx.TargetNetwork,
		SourceTxHash:  tx.SourceTransactionHash,
	}
	if !tx.BurnID.IsZero() {
		job.BurnID = tx.BurnID.Hex()
	}
	return job
}

func recoveryJobFor(tx *bridge.Transaction, attempt int) RecoveryJob {
	job := RecoveryJob{
		RowID:         tx.ID,
		Recipient:     tx.Recipient,
		Amount:        tx.Amount,
		SourceNetwork: tx.SourceNetwork,
		TargetNetwork: tx.TargetNetwork,
		Attempt:       attempt,
	}
	if !tx.BurnID.IsZero() {
		job.BurnID = tx.BurnID.Hex()
	}
	return job
}
