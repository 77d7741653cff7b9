package rpcmodel

import "fmt"

// RPCErrorCode identifies a specific RPC error, per the teacher's own
// jsonrpc.RPCErrorCode convention (an int with a stable, documented
// value callers can match on rather than parsing Message text).
type RPCErrorCode int

// The stable codes spec.md §7 names for user-visible RPC errors. Their
// numeric values aren't specified by spec.md; ClientNotConnected through
// InternalError are assigned the same negative-int-below-zero convention
// the teacher's own RPCErrorCode constants use, just renumbered for this
// command set.
const (
	ErrRPCClientNotConnected RPCErrorCode = -1
	ErrRPCClientInInitialDownload RPCErrorCode = -2
	ErrRPCWalletError RPCErrorCode = -3
	ErrRPCInvalidParameter RPCErrorCode = -4
	ErrRPCInternalError RPCErrorCode = -5
)

// RPCError represents an error that is used as a part of the JSON-RPC
// response object, grounded on the teacher's jsonrpc.RPCError
// (server/rpc/handle_remove_manual_node.go constructs one of these
// directly as a handler's returned error).
type RPCError struct {
	Code    RPCErrorCode
	Message string
}

// Error satisfies the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// NewRPCError returns a new RPCError with the given code and formatted
// message.
func NewRPCError(code RPCErrorCode, format string, args ...interface{}) *RPCError {
	return &RPCError{Code: code, Message: fmt.Sprintf(format, args...)}
}
