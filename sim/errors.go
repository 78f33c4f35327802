package sim

import "errors"

// An ErrCode is the numeric error taxonomy shared with the external boundary.
// The values are part of the external contract; do not renumber them. The gap
// at 2 is preserved for compatibility.
type ErrCode uint32

const (
	// Success reports that the operation completed, no error.
	Success ErrCode = 0

	// Undefined reports an internal impossibility. The fabric treats these
	// as bugs, not as recoverable conditions.
	Undefined ErrCode = 1

	// NullPointerArgument reports an operation on a nil, released, or
	// destroyed handle.
	NullPointerArgument ErrCode = 3

	// NotImplemented reports an operation that is not available yet.
	NotImplemented ErrCode = 4

	// SocketDisconnected reports that a mailbox is closed and drained, so no
	// message will ever arrive. This is a normal terminal outcome of Recv,
	// not a crash.
	SocketDisconnected ErrCode = 5
)

// String returns the name of the error code.
func (c ErrCode) String() string {
	switch c {
	case Success:
		return "Success"
	case Undefined:
		return "Undefined"
	case NullPointerArgument:
		return "NullPointerArgument"
	case NotImplemented:
		return "NotImplemented"
	case SocketDisconnected:
		return "SocketDisconnected"
	default:
		return "Unknown"
	}
}

// An Error pairs an ErrCode with a description.
type Error struct {
	Code ErrCode
	Msg  string
}

// NewError creates an Error with the given code.
func NewError(code ErrCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Error returns the description of the error.
func (e *Error) Error() string {
	return e.Code.String() + ": " + e.Msg
}

// CodeOf extracts the ErrCode carried by err. A nil error maps to Success; an
// error that does not carry a code maps to Undefined.
func CodeOf(err error) ErrCode {
	if err == nil {
		return Success
	}

	var simErr *Error
	if errors.As(err, &simErr) {
		return simErr.Code
	}

	return Undefined
}
