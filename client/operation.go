// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

// DefaultPollInterval paces [Client.WaitOperation].
const DefaultPollInterval = time.Second

// Operation is a long-running server-side operation, as returned by the
// deferred variants of dataset, tuning and batch calls.
type Operation struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	Done        bool            `json:"done"`
	Error       *OperationError `json:"error,omitempty"`
	Response    json.RawMessage `json:"response,omitempty"`
}

// OperationError is the failure status of a finished operation.
type OperationError struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	message := e.Message
	if message == "" {
		message = "<empty message>"
	}
	return fmt.Sprintf("operation failed with message: %s (code %d)", message, e.Code)
}

// GetOperation fetches the current state of an operation.
func (c *Client) GetOperation(ctx context.Context, id string) (*Operation, error) {
	var op Operation
	err := c.Do(ctx, Call{
		Service:    "operations",
		Method:     http.MethodGet,
		Path:       "/operations/" + id,
		Result:     &op,
		Idempotent: true,
	})
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// WaitOperation polls an operation until it finishes. A finished operation
// with an error status fails with its [*OperationError]; cancellation of ctx
// stops the polling.
func (c *Client) WaitOperation(ctx context.Context, id string, pollInterval time.Duration) (*Operation, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	for {
		op, err := c.GetOperation(ctx, id)
		if err != nil {
			return nil, err
		}
		if op.Done {
			if op.Error != nil {
				return op, fmt.Errorf("operation %s: %w", op.ID, op.Error)
			}
			return op, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clk.After(pollInterval):
		}
	}
}

// UnmarshalResponse decodes a finished operation's response payload into out.
func (op *Operation) UnmarshalResponse(out any) error {
	if len(op.Response) == 0 {
		return fmt.Errorf("operation %s carries no response", op.ID)
	}
	return sonic.Unmarshal(op.Response, out)
}
