package auth

import (
	"fmt"

	"github.com/jcmturner/gokrb5/v8/client"
	"github.com/jcmturner/gokrb5/v8/config"
	"github.com/jcmturner/gokrb5/v8/keytab"
	"github.com/jcmturner/gokrb5/v8/spnego"
)

// Kerberos is an Initiator backed by a gokrb5 client. The exchange is a
// single leg: one SPNEGO NegTokenInit wrapping an AP-REQ, no server
// counter-token expected beyond the accept-completed response.
type Kerberos struct {
	client *client.Client

	// SPN is the target service principal, e.g. cifs/server.example.com
	spn string

	sessionKey []byte
	complete   bool
}

// NewKerberosWithPassword builds an initiator that obtains tickets with a
// password. confPath points at a krb5.conf.
func NewKerberosWithPassword(username, realm, password, spn, confPath string) (*Kerberos, error) {
	cfg, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("loading krb5 config: %w", err)
	}

	cl := client.NewWithPassword(username, realm, password, cfg,
		client.DisablePAFXFAST(true))
	if err := cl.Login(); err != nil {
		return nil, fmt.Errorf("kerberos login: %w", err)
	}

	return &Kerberos{client: cl, spn: spn}, nil
}

// NewKerberosWithKeytab builds an initiator that authenticates from a
// keytab file
func NewKerberosWithKeytab(username, realm, keytabPath, spn, confPath string) (*Kerberos, error) {
	cfg, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("loading krb5 config: %w", err)
	}

	kt, err := keytab.Load(keytabPath)
	if err != nil {
		return nil, fmt.Errorf("loading keytab: %w", err)
	}

	cl := client.NewWithKeytab(username, realm, kt, cfg,
		client.DisablePAFXFAST(true))
	if err := cl.Login(); err != nil {
		return nil, fmt.Errorf("kerberos login: %w", err)
	}

	return &Kerberos{client: cl, spn: spn}, nil
}

// InitSecContext produces the SPNEGO NegTokenInit for the target service.
// The input token is ignored: Kerberos needs no server challenge.
func (k *Kerberos) InitSecContext(_ []byte) ([]byte, error) {
	if k.complete {
		return nil, ErrContextComplete
	}

	tkt, key, err := k.client.GetServiceTicket(k.spn)
	if err != nil {
		return nil, fmt.Errorf("obtaining service ticket for %s: %w", k.spn, err)
	}

	nti, err := spnego.NewNegTokenInitKRB5(k.client, tkt, key)
	if err != nil {
		return nil, fmt.Errorf("building SPNEGO token: %w", err)
	}

	st := spnego.SPNEGOToken{
		Init:         true,
		NegTokenInit: nti,
	}
	token, err := st.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshalling SPNEGO token: %w", err)
	}

	k.sessionKey = key.KeyValue
	k.complete = true
	return token, nil
}

// Complete reports whether the token exchange has finished
func (k *Kerberos) Complete() bool { return k.complete }

// SessionKey returns the ticket session key once the context is complete
func (k *Kerberos) SessionKey() []byte {
	if !k.complete {
		return nil
	}
	return k.sessionKey
}
