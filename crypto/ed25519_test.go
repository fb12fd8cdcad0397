package crypto

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/iov-one/weave-market/errors"
	"github.com/iov-one/weave-market/weavetest/assert"
)

func TestSignVerify(t *testing.T) {
	priv := GenPrivKeyEd25519()
	pub := priv.PublicKey()
	assert.Nil(t, pub.Validate())

	msg := []byte("mint ipfs://asset")
	sig, err := priv.Sign(msg)
	assert.Nil(t, err)

	if !pub.Verify(msg, sig) {
		t.Fatal("signature must verify")
	}
	if pub.Verify([]byte("mint ipfs://other"), sig) {
		t.Fatal("signature of another message must not verify")
	}
	other := GenPrivKeyEd25519().PublicKey()
	if other.Verify(msg, sig) {
		t.Fatal("signature must not verify with another key")
	}
	if (&PublicKey{}).Verify(msg, sig) {
		t.Fatal("empty key must not verify")
	}
}

func TestDeterministicAddress(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed).PublicKey()
	b := PrivKeyEd25519FromSeed(seed).PublicKey()
	assert.Equal(t, a.Address(), b.Address())
	assert.Nil(t, a.Address().Validate())

	ext, typ, data, err := a.Condition().Parse()
	assert.Nil(t, err)
	assert.Equal(t, ExtensionName, ext)
	assert.Equal(t, "ed25519", typ)
	assert.Equal(t, a.Ed25519, data)
}

func TestPublicKeySerialization(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	raw, err := pub.Marshal()
	assert.Nil(t, err)

	var got PublicKey
	assert.Nil(t, got.Unmarshal(raw))
	assert.Equal(t, pub.Ed25519, got.Ed25519)
}

func TestKeyFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "keyfile")
	assert.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "alice.key")
	priv := GenPrivKeyEd25519()
	assert.Nil(t, SaveKey(path, priv))
	assert.IsErr(t, errors.ErrInput, SaveKey(path, priv))

	loaded, err := LoadKey(path)
	assert.Nil(t, err)
	assert.Equal(t, priv.Ed25519, loaded.Ed25519)

	_, err = LoadKey(filepath.Join(dir, "missing.key"))
	assert.IsErr(t, errors.ErrNotFound, err)
}
