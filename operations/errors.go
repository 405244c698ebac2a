package operations

import (
	"errors"
	"fmt"
	"strings"

	"btsbridge/EVMRPC"
	"btsbridge/registry"

	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrUnknownMethod   = errors.New("bad input for method")
	ErrMissingArgument = errors.New("missing required argument")
	ErrInvalidArgument = errors.New("invalid argument")
	// the core answered a fee whose parts do not add up to the requested amount
	ErrInconsistentFee = errors.New("inconsistent transfer fee")
)

type ErrorKind int

const (
	// missing or invalid input, nothing was sent
	KindConfig ErrorKind = iota + 1
	// the contract reverted or the transaction failed on chain
	KindRejected
	// endpoint unreachable, timeout, dropped connection
	KindTransport
	// a panic caught by the dispatcher
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "configuration"
	case KindRejected:
		return "contract rejection"
	case KindTransport:
		return "transport"
	case KindInternal:
		return "internal"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// OpError is the failure of one operation.
type OpError struct {
	Method Method
	Kind   ErrorKind
	Err    error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed (%s error): %s", e.Method, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnknownMethod),
		errors.Is(err, ErrMissingArgument),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, EVMRPC.ErrUnknownAccount),
		errors.Is(err, registry.ErrUnknownContract):
		return KindConfig
	case errors.Is(err, EVMRPC.ErrReceiptFailed),
		errors.Is(err, ErrInconsistentFee):
		return KindRejected
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return KindRejected
	}
	// simulated backends and some nodes only report the revert in the message
	if strings.Contains(err.Error(), "execution reverted") {
		return KindRejected
	}
	return KindTransport
}

func newOpError(method Method, err error) *OpError {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr
	}
	return &OpError{Method: method, Kind: classify(err), Err: err}
}

// ExitCode maps an operation outcome to the process exit status:
// 0 on success, 2 for configuration errors, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		if opErr.Kind == KindConfig {
			return 2
		}
		return 1
	}
	if classify(err) == KindConfig {
		return 2
	}
	return 1
}
