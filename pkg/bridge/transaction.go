// Package bridge holds the domain model of a cross-chain burn/mint transfer.
package bridge

import (
	"fmt"
	"time"
)

// Status is the settlement state of a ledger row.
type Status string

const (
	StatusPending            Status = "PENDING"
	StatusProcessing         Status = "PROCESSING"
	StatusCompleted          Status = "COMPLETED"
	StatusFailed             Status = "FAILED"
	StatusRecoveryInProgress Status = "RECOVERY_IN_PROGRESS"
)

// transitions lists, for every status, the statuses a row may move to.
// FAILED -> COMPLETED is only taken when the mint is observed on chain.
var transitions = map[Status][]Status{
	StatusPending:            {StatusProcessing},
	StatusProcessing:         {StatusCompleted, StatusFailed},
	StatusFailed:             {StatusRecoveryInProgress, StatusCompleted},
	StatusRecoveryInProgress: {StatusCompleted, StatusFailed},
	StatusCompleted:          nil,
}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// InFlight reports whether a relay task may be active for a row in this status.
func (s Status) InFlight() bool {
	return s == StatusProcessing || s == StatusRecoveryInProgress
}

// CanTransition reports whether moving from s to next is a forward move.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Sources returns every status from which next can be reached.
func Sources(next Status) []Status {
	var out []Status
	for _, from := range []Status{StatusPending, StatusProcessing, StatusFailed, StatusRecoveryInProgress} {
		if from.CanTransition(next) {
			out = append(out, from)
		}
	}
	return out
}

// Transaction is one cross-chain transfer intent, tracked end to end.
type Transaction struct {
	ID                    string
	Recipient             string
	Amount                string
	SourceNetwork         Network
	TargetNetwork         Network
	SourceTransactionHash string
	BlockHash             string
	BlockNumber           uint64
	TargetTransactionHash string
	Status                Status
	RelayTaskID           string
	BurnID                BurnID
	RecoveryAttempts      int
	LastError             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Validate checks the invariants that hold for every row.
func (t *Transaction) Validate() error {
	if t.Recipient == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if t.SourceNetwork == "" || t.TargetNetwork == "" {
		return fmt.Errorf("source and target networks are required")
	}
	if t.SourceNetwork == t.TargetNetwork {
		return fmt.Errorf("source and target network must differ, both are %s", t.SourceNetwork)
	}
	if _, ok := transitions[t.Status]; !ok {
		return fmt.Errorf("unknown status %q", t.Status)
	}
	return nil
}
