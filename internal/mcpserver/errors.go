package mcpserver

import (
	"context"
	stderrors "errors"
	"fmt"

	domainerrors "github.com/emcd/librovore/internal/errors"
)

// Custom MCP error codes for librovore, in the reserved
// implementation-defined range below -32000.
const (
	ErrCodeProcessorInavailability = -32001
	ErrCodeInventoryInaccessible   = -32002
	ErrCodeInventoryInvalid        = -32003
	ErrCodeContentInaccessible     = -32004
	ErrCodeContentInvalid          = -32005
	ErrCodeTimeout                 = -32006

	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts a domain or context error raised by internal/query
// into an MCPError, per spec.md §4.J's taxonomy.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var de *domainerrors.DomainError
	if stderrors.As(err, &de) {
		return mapDomainError(de)
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return &MCPError{Code: ErrCodeTimeout, Message: "request timed out"}
	case stderrors.Is(err, context.Canceled):
		return &MCPError{Code: ErrCodeTimeout, Message: "request was canceled"}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}

func mapDomainError(de *domainerrors.DomainError) *MCPError {
	message := de.Message
	if de.Suggestion != "" {
		message = fmt.Sprintf("%s %s", de.Message, de.Suggestion)
	}

	switch de.Kind {
	case domainerrors.KindProcessorInavailability:
		return &MCPError{Code: ErrCodeProcessorInavailability, Message: message}
	case domainerrors.KindInventoryInaccessibility:
		return &MCPError{Code: ErrCodeInventoryInaccessible, Message: message}
	case domainerrors.KindInventoryInvalidity:
		return &MCPError{Code: ErrCodeInventoryInvalid, Message: message}
	case domainerrors.KindContentInaccessibility:
		return &MCPError{Code: ErrCodeContentInaccessible, Message: message}
	case domainerrors.KindContentInvalidity:
		return &MCPError{Code: ErrCodeContentInvalid, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}

// NewInvalidParamsError reports a caller input validation failure.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: msg}
}
