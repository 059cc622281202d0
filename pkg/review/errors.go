package review

import (
	"errors"

	"reviewflow/pkg/transport"
)

// ErrMissingSession is raised by artifact generation when no session
// identifier is supplied. It is the only locally-raised validation error in
// the core; everything else surfaces from the transport.
var ErrMissingSession = errors.New("missing session id")

// FallbackGenerationMessage is shown when artifact generation fails and the
// server's error payload carries no usable message.
const FallbackGenerationMessage = "export failed, contact an administrator"

// GenerationError wraps an artifact-generation failure with a caller-facing
// message: the server's structured error when present, else
// FallbackGenerationMessage. The underlying transport error remains
// reachable through Unwrap.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func wrapGeneration(err error) *GenerationError {
	msg := FallbackGenerationMessage
	if te := transport.AsError(err); te != nil && te.ServerMessage != "" {
		msg = te.ServerMessage
	}
	return &GenerationError{Message: msg, Err: err}
}
