// Package relay talks to the gas sponsorship relay that executes mint calls.
package relay

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TaskState is the lifecycle state the relay reports for a task.
type TaskState string

const (
	TaskPending                TaskState = "Pending"
	TaskCheckPending           TaskState = "CheckPending"
	TaskExecPending            TaskState = "ExecPending"
	TaskWaitingForConfirmation TaskState = "WaitingForConfirmation"
	TaskExecSuccess            TaskState = "ExecSuccess"
	TaskExecReverted           TaskState = "ExecReverted"
	TaskBlacklisted            TaskState = "Blacklisted"
	TaskCancelled              TaskState = "Cancelled"
	TaskNotFound               TaskState = "NotFound"
)

// Bucket groups task states by what the reconciler does with them.
type Bucket int

const (
	// BucketPending is non-terminal, including unknown states and tasks not indexed yet.
	BucketPending Bucket = iota
	BucketSuccess
	BucketFailure
)

func (b Bucket) String() string {
	switch b {
	case BucketSuccess:
		return "success"
	case BucketFailure:
		return "failure"
	default:
		return "pending"
	}
}

// Bucket maps the state onto success, failure or pending.
func (s TaskState) Bucket() Bucket {
	switch s {
	case TaskExecSuccess:
		return BucketSuccess
	case TaskExecReverted, TaskBlacklisted, TaskCancelled:
		return BucketFailure
	default:
		return BucketPending
	}
}

// CallRequest describes one sponsored call. Authorizers fill in the credential fields.
type CallRequest struct {
	ChainID uint64
	Target  common.Address
	Data    []byte

	SponsorAPIKey string

	// ERC-2771 fields, set when the call is made on behalf of a user.
	User          *common.Address
	UserNonce     *big.Int
	UserDeadline  uint64
	UserSignature []byte
}

// TaskStatus is the relay's report for a task.
type TaskStatus struct {
	TaskID           string
	State            TaskState
	TransactionHash  string
	BlockNumber      uint64
	LastCheckMessage string
}

// Client submits calls to the relay and polls their outcome.
//
//go:generate mockery --name Client --output mocks --outpkg mocks --filename mock_client.go --with-expecter
type Client interface {
	Submit(ctx context.Context, req *CallRequest) (string, error)
	GetStatus(ctx context.Context, taskID string) (*TaskStatus, error)
}

// ErrMissingCredentials is returned when a request lacks the sponsor key.
var ErrMissingCredentials = errors.New("relay credentials missing")

// SubmitError is a submission the relay answered with an error status.
type SubmitError struct {
	StatusCode int
	Message    string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("relay rejected submission (status %d): %s", e.StatusCode, e.Message)
}
