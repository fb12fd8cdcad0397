/*
Package crypto provides the account keys used to authenticate callers.

Every account is controlled by an ed25519 key pair. The public key is turned
into a weave.Condition and the condition into the account address, so the
address of a caller can be recomputed from any signed request.
*/
package crypto

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/codec"
	"github.com/iov-one/weave-market/errors"
	"golang.org/x/crypto/ed25519"
)

// ExtensionName is used for the Conditions we get from signatures
const ExtensionName = "sigs"

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() *PublicKey
}

// PublicKey is an ed25519 public key.
type PublicKey struct {
	Ed25519 []byte
}

// Verify verifies the signature was created with this message and public key
func (p *PublicKey) Verify(message, sig []byte) bool {
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig)
}

// Condition encodes the public key into a weave permission
func (p *PublicKey) Condition() weave.Condition {
	return weave.NewCondition(ExtensionName, "ed25519", p.Ed25519)
}

// Address returns the account address controlled by this key.
func (p *PublicKey) Address() weave.Address {
	return p.Condition().Address()
}

// Validate returns an error if the key is not of the right size.
func (p *PublicKey) Validate() error {
	if len(p.Ed25519) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "public key length %d", len(p.Ed25519))
	}
	return nil
}

func (p *PublicKey) Marshal() ([]byte, error) {
	var b codec.Buffer
	b.Bytes(1, p.Ed25519)
	return b.Result(), nil
}

func (p *PublicKey) Unmarshal(raw []byte) error {
	*p = PublicKey{}
	d := codec.NewDecoder(raw)
	for d.Next() {
		if d.Field() == 1 {
			p.Ed25519 = d.Bytes()
		} else {
			d.Skip()
		}
	}
	return d.Err()
}

// PrivateKey is an ed25519 private key.
type PrivateKey struct {
	Ed25519 []byte
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns a matching signature for this private key
func (p *PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrapf(errors.ErrInput, "private key length %d", len(p.Ed25519))
	}
	return ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message), nil
}

// PublicKey returns the corresponding PublicKey
func (p *PrivateKey) PublicKey() *PublicKey {
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a random new private key
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed will deterministically generate a private key from
// a given seed. Use if you have a strong source of external randomness,
// or for deterministic keys in test cases.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
