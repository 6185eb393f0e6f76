package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/chainsafe/burnmint-bridge/internal/metrics"
)

const maxResponseBytes = 1 << 20

// HTTPClient is the REST implementation of Client.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a relay client. Every request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type sponsoredCallRequest struct {
	ChainID       string `json:"chainId"`
	Target        string `json:"target"`
	Data          string `json:"data"`
	SponsorAPIKey string `json:"sponsorApiKey"`
	User          string `json:"user,omitempty"`
	UserNonce     string `json:"userNonce,omitempty"`
	UserDeadline  string `json:"userDeadline,omitempty"`
	UserSignature string `json:"userSignature,omitempty"`
}

type taskResponse struct {
	TaskID  string `json:"taskId"`
	Message string `json:"message"`
}

type statusResponse struct {
	Task *struct {
		TaskID           string `json:"taskId"`
		TaskState        string `json:"taskState"`
		TransactionHash  string `json:"transactionHash"`
		BlockNumber      uint64 `json:"blockNumber"`
		LastCheckMessage string `json:"lastCheckMessage"`
	} `json:"task"`
	Message string `json:"message"`
}

// Submit posts the call to the sponsored-call endpoint matching its credentials.
func (c *HTTPClient) Submit(ctx context.Context, req *CallRequest) (string, error) {
	if req.SponsorAPIKey == "" {
		return "", ErrMissingCredentials
	}

	body := sponsoredCallRequest{
		ChainID:       strconv.FormatUint(req.ChainID, 10),
		Target:        req.Target.Hex(),
		Data:          hexutil.Encode(req.Data),
		SponsorAPIKey: req.SponsorAPIKey,
	}
	path := "/relays/v2/sponsored-call"
	if req.User != nil {
		if req.UserNonce == nil || len(req.UserSignature) == 0 {
			return "", fmt.Errorf("%w: erc2771 call without nonce or signature", ErrMissingCredentials)
		}
		path = "/relays/v2/sponsored-call-erc2771"
		body.User = req.User.Hex()
		body.UserNonce = req.UserNonce.String()
		body.UserDeadline = strconv.FormatUint(req.UserDeadline, 10)
		body.UserSignature = hexutil.Encode(req.UserSignature)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode relay request: %w", err)
	}

	start := time.Now()
	defer func() {
		metrics.RelayRequestDuration.WithLabelValues("submit").Observe(time.Since(start).Seconds())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to build relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("relay submit failed: %w", err)
	}
	defer resp.Body.Close()

	var out taskResponse
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &SubmitError{StatusCode: resp.StatusCode, Message: out.Message}
	}
	if out.TaskID == "" {
		return "", &SubmitError{StatusCode: resp.StatusCode, Message: "response carried no task id"}
	}
	return out.TaskID, nil
}

// GetStatus polls the task status endpoint. An unknown task is reported as TaskNotFound, not an error.
func (c *HTTPClient) GetStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	start := time.Now()
	defer func() {
		metrics.RelayRequestDuration.WithLabelValues("status").Observe(time.Since(start).Seconds())
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks/status/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relay status failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &TaskStatus{TaskID: taskID, State: TaskNotFound}, nil
	}

	var out statusResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("relay status returned %d: %s", resp.StatusCode, out.Message)
	}
	if out.Task == nil {
		return &TaskStatus{TaskID: taskID, State: TaskNotFound, LastCheckMessage: out.Message}, nil
	}

	return &TaskStatus{
		TaskID:           taskID,
		State:            TaskState(out.Task.TaskState),
		TransactionHash:  out.Task.TransactionHash,
		BlockNumber:      out.Task.BlockNumber,
		LastCheckMessage: out.Task.LastCheckMessage,
	}, nil
}

func decode(resp *http.Response, v any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read relay response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		if resp.StatusCode >= http.StatusMultipleChoices {
			// error pages are not always JSON
			return &SubmitError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	return nil
}
