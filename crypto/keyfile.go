package crypto

import (
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	"github.com/iov-one/weave-market/errors"
	"golang.org/x/crypto/ed25519"
)

// SaveKey writes the seed of given key hex encoded into a file readable only
// by the current user. An existing file is never overwritten.
func SaveKey(path string, key *PrivateKey) error {
	if len(key.Ed25519) != ed25519.PrivateKeySize {
		return errors.Wrap(errors.ErrInput, "invalid private key")
	}
	seed := ed25519.PrivateKey(key.Ed25519).Seed()
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create key file: %s", err)
	}
	defer fd.Close()
	if _, err := fd.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot write key file: %s", err)
	}
	return nil
}

// LoadKey reads a key written by SaveKey.
func LoadKey(path string) (*PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "cannot read key file: %s", err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "malformed key file: %s", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "invalid seed length %d", len(seed))
	}
	return PrivKeyEd25519FromSeed(seed), nil
}
