// Package auth provides security contexts for SMB2 session establishment.
//
// SESSION_SETUP carries opaque GSS tokens: the client sends one, the
// server answers with STATUS_MORE_PROCESSING_REQUIRED and a counter-token
// until the exchange completes. An Initiator produces the client-side
// tokens and, once the exchange is done, yields the session key the
// connection uses for message signing.
package auth

import "errors"

// ErrContextComplete is returned when InitSecContext is called after the
// security context has already been established
var ErrContextComplete = errors.New("auth: security context already established")

// Initiator drives the client side of a GSS token exchange.
type Initiator interface {
	// InitSecContext consumes the server's last token (nil on the first
	// round) and produces the next token to send.
	InitSecContext(input []byte) ([]byte, error)

	// Complete reports whether the exchange has finished and SessionKey
	// is available.
	Complete() bool

	// SessionKey returns the established session key, nil until Complete.
	SessionKey() []byte
}
