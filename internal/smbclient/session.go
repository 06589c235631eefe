package smbclient

import (
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/smbcore/internal/logger"
	"github.com/marmos91/smbcore/internal/protocol/smb/signing"
	"github.com/marmos91/smbcore/internal/protocol/smb/types"
	"github.com/marmos91/smbcore/internal/protocol/smb/wire"
	"github.com/marmos91/smbcore/internal/smbclient/auth"
)

// SessionConfig parameterizes session establishment.
type SessionConfig struct {
	// Initiator produces the GSS tokens for session setup
	Initiator auth.Initiator

	// ClientGUID identifies this client across reconnects; a zero value
	// gets a random GUID
	ClientGUID uuid.UUID

	// Dialects offered during negotiation; nil means wire.DefaultDialects
	Dialects []uint16

	// RequireSigning advertises mandatory signing in the negotiate
	// request. Signing is enabled regardless once a session key exists,
	// unless the server grants a guest or anonymous session.
	RequireSigning bool

	// Deadline bounds every round of the exchange; zero disables timeouts
	Deadline time.Time
}

// EstablishSession negotiates the dialect and runs the SESSION_SETUP token
// exchange until the server accepts. The returned future resolves with the
// final SESSION_SETUP response once the session is usable; intermediate
// rounds are driven internally from Service as their responses arrive.
func (c *Conn) EstablishSession(cfg SessionConfig) (*Future, error) {
	if cfg.Initiator == nil {
		return nil, &SequenceError{Reason: "session config has no initiator"}
	}
	if cfg.ClientGUID == uuid.Nil {
		cfg.ClientGUID = uuid.New()
	}
	if cfg.Dialects == nil {
		cfg.Dialects = wire.DefaultDialects
	}

	securityMode := types.SMB2NegotiateSigningEnabled
	if cfg.RequireSigning {
		securityMode |= types.SMB2NegotiateSigningRequired
	}

	result := newFuture(types.SMB2SessionSetup)

	negFut, err := c.Negotiate(&wire.NegotiateRequest{
		SecurityMode: securityMode,
		ClientGUID:   cfg.ClientGUID,
		Dialects:     cfg.Dialects,
	}, cfg.Deadline)
	if err != nil {
		return nil, err
	}

	negFut.then(func(resp *Response, err error) {
		if err != nil {
			result.resolve(resp, err)
			return
		}
		neg, decErr := wire.DecodeNegotiateResponse(resp.Body)
		if decErr != nil {
			result.resolve(resp, decErr)
			return
		}

		logger.Info("dialect negotiated",
			"dialect", neg.DialectRevision,
			"max_transact", neg.MaxTransactSize,
			"signing_required", neg.SecurityMode&types.SMB2NegotiateSigningRequired != 0)

		if neg.MaxTransactSize > 0 {
			c.maxTransactSize = neg.MaxTransactSize
		}
		if neg.MaxReadSize > 0 {
			c.maxReadSize = neg.MaxReadSize
		}
		if neg.MaxWriteSize > 0 {
			c.maxWriteSize = neg.MaxWriteSize
		}
		c.sessionSetupRound(cfg, nil, result)
	})

	return result, nil
}

// sessionSetupRound sends one SESSION_SETUP leg and chains the next round
// from its response
func (c *Conn) sessionSetupRound(cfg SessionConfig, serverToken []byte, result *Future) {
	token, err := cfg.Initiator.InitSecContext(serverToken)
	if err != nil {
		result.resolve(nil, err)
		return
	}

	securityMode := uint8(types.SMB2NegotiateSigningEnabled)
	if cfg.RequireSigning {
		securityMode |= uint8(types.SMB2NegotiateSigningRequired)
	}

	fut, submitErr := c.SessionSetup(&wire.SessionSetupRequest{
		SecurityMode:   securityMode,
		SecurityBuffer: token,
	}, cfg.Deadline)
	if submitErr != nil {
		result.resolve(nil, submitErr)
		return
	}

	fut.then(func(resp *Response, err error) {
		if resp != nil && resp.Header.SessionID != 0 {
			// the server assigns the session id on the first leg, even
			// when more processing is required
			c.sessionID = resp.Header.SessionID
		}

		if resp != nil && resp.Header.Status == types.StatusMoreProcessingRequired {
			setup, decErr := wire.DecodeSessionSetupResponse(resp.Body)
			if decErr != nil {
				result.resolve(resp, decErr)
				return
			}
			next := setup.SecurityBuffer
			if st, parseErr := auth.ParseServerToken(next); parseErr == nil {
				next = st.MechToken
			}
			c.sessionSetupRound(cfg, next, result)
			return
		}

		if err != nil {
			result.resolve(resp, err)
			return
		}

		setup, decErr := wire.DecodeSessionSetupResponse(resp.Body)
		if decErr != nil {
			result.resolve(resp, decErr)
			return
		}

		guest := setup.SessionFlags&(types.SMB2SessionFlagIsGuest|types.SMB2SessionFlagIsNull) != 0
		if key := cfg.Initiator.SessionKey(); len(key) > 0 && !guest {
			c.signingKey = signing.NewSigningKey(key)
		}

		logger.Info("session established",
			"session_id", c.sessionID,
			"guest", guest,
			"signing", c.signingKey != nil && c.signingKey.IsValid())
		result.resolve(resp, nil)
	})
}

// ConnectShare binds the connection to a share and installs the granted
// tree id for subsequent requests
func (c *Conn) ConnectShare(path string, deadline time.Time) (*Future, error) {
	fut, err := c.TreeConnect(path, deadline)
	if err != nil {
		return nil, err
	}
	fut.then(func(resp *Response, err error) {
		if err == nil {
			c.treeID = resp.Header.TreeID
			logger.Info("share connected", "path", path, "tree_id", c.treeID)
		}
	})
	return fut, nil
}

// DisconnectShare unbinds the current tree and clears the tree id
func (c *Conn) DisconnectShare(deadline time.Time) (*Future, error) {
	fut, err := c.TreeDisconnect(deadline)
	if err != nil {
		return nil, err
	}
	fut.then(func(_ *Response, err error) {
		if err == nil {
			c.treeID = 0
		}
	})
	return fut, nil
}

// EndSession logs the session off and clears session state on success
func (c *Conn) EndSession(deadline time.Time) (*Future, error) {
	fut, err := c.Logoff(deadline)
	if err != nil {
		return nil, err
	}
	fut.then(func(_ *Response, err error) {
		if err == nil {
			c.sessionID = 0
			c.treeID = 0
			c.signingKey = nil
		}
	})
	return fut, nil
}
