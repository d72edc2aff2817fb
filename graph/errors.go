package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoResult is the positive "not found". Optional query fields surface it
// as null, required fields as an error.
var ErrNoResult = errors.New("no result")

// ParamError reports malformed caller input such as an unknown platform
// string or an unparseable UUID. It is always returned to the user.
type ParamError struct {
	msg string
}

// NewParamError formats a new ParamError.
func NewParamError(format string, args ...interface{}) error {
	return &ParamError{msg: fmt.Sprintf(format, args...)}
}

func (e *ParamError) Error() string {
	return "param error: " + e.msg
}

// IsParamError reports whether err has a ParamError in its chain.
func IsParamError(err error) bool {
	var pe *ParamError
	return errors.As(err, &pe)
}

// StoreError reports a connectivity or query-shape failure from the graph
// database. Code and Message carry the database's own error envelope when
// one was returned.
type StoreError struct {
	Operation string
	Code      string
	Message   string
	Err       error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store error in %s: %v", e.Operation, e.Err)
	}
	if e.Code != "" {
		return fmt.Sprintf("store error in %s: code %s: %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("store error in %s: %s", e.Operation, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err has a StoreError in its chain.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// UpstreamError reports a non-2xx response or a shape-mismatched payload
// from one upstream. It never fails a read when a cached value exists.
type UpstreamError struct {
	Upstream string
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s: %s: %v", e.Upstream, e.Message, e.Err)
	}
	return fmt.Sprintf("upstream %s: %s", e.Upstream, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err has an UpstreamError in its chain.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// PoolError reports a saturated or draining worker pool.
type PoolError struct {
	Message string
}

func (e *PoolError) Error() string {
	return "pool error: " + e.Message
}

// IsPoolError reports whether err has a PoolError in its chain.
func IsPoolError(err error) bool {
	var pe *PoolError
	return errors.As(err, &pe)
}
