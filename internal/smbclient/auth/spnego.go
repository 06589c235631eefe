package auth

import (
	"errors"
	"fmt"

	"github.com/jcmturner/gofork/encoding/asn1"
	"github.com/jcmturner/gokrb5/v8/spnego"
)

// Well-known mechanism OIDs seen during SPNEGO negotiation
var (
	// OIDMSKerberosV5 is Microsoft's Kerberos 5 OID (1.2.840.48018.1.2.2)
	OIDMSKerberosV5 = asn1.ObjectIdentifier{1, 2, 840, 48018, 1, 2, 2}

	// OIDKerberosV5 is the standard Kerberos 5 OID (1.2.840.113554.1.2.2)
	OIDKerberosV5 = asn1.ObjectIdentifier{1, 2, 840, 113554, 1, 2, 2}

	// OIDNTLMSSP is the NTLM Security Support Provider OID (1.3.6.1.4.1.311.2.2.10)
	OIDNTLMSSP = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 2, 2, 10}
)

// NegState is the negotiation state carried in a NegTokenResp.
// [RFC 4178] Section 4.2.2
type NegState int

const (
	NegStateAcceptCompleted  NegState = 0
	NegStateAcceptIncomplete NegState = 1
	NegStateReject           NegState = 2
	NegStateRequestMIC       NegState = 3
)

var (
	ErrInvalidToken = errors.New("spnego: invalid token format")
	ErrRejected     = errors.New("spnego: authentication rejected")
)

// ServerToken is the parsed form of a SPNEGO token received from the
// server during session setup.
type ServerToken struct {
	// NegState is the server's negotiation verdict
	NegState NegState

	// SupportedMech is the mechanism the server selected
	SupportedMech asn1.ObjectIdentifier

	// MechToken is the inner mechanism token for the next client round
	MechToken []byte
}

// ParseServerToken decodes a server NegTokenResp. A reject state returns
// ErrRejected; callers treat anything else as progress.
func ParseServerToken(data []byte) (*ServerToken, error) {
	if len(data) < 2 {
		return nil, ErrInvalidToken
	}

	isInit, token, err := spnego.UnmarshalNegToken(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if isInit {
		return nil, fmt.Errorf("%w: server sent NegTokenInit", ErrInvalidToken)
	}

	resp, ok := token.(spnego.NegTokenResp)
	if !ok {
		return nil, ErrInvalidToken
	}

	st := &ServerToken{
		NegState:      NegState(resp.NegState),
		SupportedMech: resp.SupportedMech,
		MechToken:     resp.ResponseToken,
	}
	if st.NegState == NegStateReject {
		return st, ErrRejected
	}
	return st, nil
}
