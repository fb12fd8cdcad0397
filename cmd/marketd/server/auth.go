package server

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/app"
	"github.com/iov-one/weave-market/crypto"
	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/x/sigs"
)

// Headers authenticating a state changing request.
const (
	PubKeyHeader    = "X-Pubkey"
	SignatureHeader = "X-Signature"
	SequenceHeader  = "X-Sequence"
)

const maxBodySize = 1 << 20

// SignBytes returns the canonical form of a request that is signed. The
// signature covers it together with the chain id and the sequence of the
// signer, see sigs.BuildSignBytes.
func SignBytes(method, path string, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(path)
	b.WriteByte('\n')
	b.Write(body)
	return b.Bytes()
}

// Sign sets the authentication headers of a request with given body. The
// sequence must be the next nonce of the signer, as returned by
// GET /auth/nonce/{addr}.
func Sign(req *http.Request, signer crypto.Signer, chainID string, seq int64, body []byte) error {
	sig, err := sigs.SignBytes(signer, SignBytes(req.Method, req.URL.Path, body), chainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign request")
	}
	req.Header.Set(PubKeyHeader, hex.EncodeToString(sig.Pubkey.Ed25519))
	req.Header.Set(SignatureHeader, hex.EncodeToString(sig.Signature))
	req.Header.Set(SequenceHeader, strconv.FormatInt(sig.Sequence, 10))
	return nil
}

// auth carries the credentials of a signed request. The signature is
// verified when the transaction is delivered, in the same savepoint that
// consumes the sequence.
type auth struct {
	caller    weave.Address
	signBytes []byte
	sig       *sigs.StdSignature
}

// tx returns a transaction executing msg on behalf of the caller.
func (a *auth) tx(msg weave.Msg) weave.Tx {
	return app.NewSignedTx(a.caller, msg, a.signBytes, a.sig)
}

// signedHandler serves a request that carries valid credentials.
type signedHandler func(w http.ResponseWriter, r *http.Request, a *auth, body []byte)

// signed reads the request credentials and requires the caller declared in
// the body to be the owner of the signing key.
func (s *Server) signed(fn signedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
		if err != nil {
			s.writeError(w, errors.Wrapf(errors.ErrInput, "read body: %s", err))
			return
		}
		a, err := authenticate(r, body)
		if err != nil {
			s.writeError(w, err)
			return
		}
		fn(w, r, a, body)
	}
}

func authenticate(r *http.Request, body []byte) (*auth, error) {
	rawKey, err := hex.DecodeString(r.Header.Get(PubKeyHeader))
	if err != nil || len(rawKey) == 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing or malformed public key")
	}
	sig, err := hex.DecodeString(r.Header.Get(SignatureHeader))
	if err != nil || len(sig) == 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing or malformed signature")
	}
	seq, err := strconv.ParseInt(r.Header.Get(SequenceHeader), 10, 64)
	if err != nil || seq < 0 {
		return nil, errors.Wrap(errors.ErrUnauthorized, "missing or malformed sequence")
	}
	pub := &crypto.PublicKey{Ed25519: rawKey}
	if err := pub.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid public key")
	}

	var declared struct {
		Caller weave.Address `json:"caller"`
	}
	if err := json.Unmarshal(body, &declared); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode body: %s", err)
	}
	addr := pub.Address()
	if !addr.Equals(declared.Caller) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "caller %s is not the signer %s", declared.Caller, addr)
	}
	return &auth{
		caller:    addr,
		signBytes: SignBytes(r.Method, r.URL.Path, body),
		sig:       &sigs.StdSignature{Pubkey: pub, Signature: sig, Sequence: seq},
	}, nil
}

func (s *Server) handleNonce(w http.ResponseWriter, r *http.Request) {
	addr, ok := s.pathAddress(w, r)
	if !ok {
		return
	}
	seq, err := s.market.NextNonce(addr)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, NonceResponse{Address: addr, Sequence: seq})
}

// NonceResponse is returned by GET /auth/nonce/{addr}.
type NonceResponse struct {
	Address  weave.Address `json:"address"`
	Sequence int64         `json:"sequence"`
}
