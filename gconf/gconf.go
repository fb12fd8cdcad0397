package gconf

import (
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Configuration is implemented by every extension configuration. It is
// validated before every write.
type Configuration interface {
	weave.Persistent
	Validate() error
}

// key is the singleton key of the configuration of the extension.
func key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates and stores the configuration of the pkg extension,
// replacing any previous one.
func Save(db weave.KVStore, pkg string, conf Configuration) error {
	if err := conf.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s configuration", pkg)
	}
	raw, err := conf.Marshal()
	if err != nil {
		return errors.Wrapf(err, "cannot serialize %s configuration", pkg)
	}
	return db.Set(key(pkg), raw)
}

// Load reads the configuration of the pkg extension into dst. It fails
// with errors.ErrNotFound until the configuration is saved.
func Load(db weave.ReadOnlyKVStore, pkg string, dst Configuration) error {
	raw, err := db.Get(key(pkg))
	switch {
	case err != nil:
		return errors.Wrapf(err, "cannot read %s configuration", pkg)
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "no %s configuration", pkg)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "cannot deserialize %s configuration", pkg)
	}
	return nil
}

// InitConfig saves the genesis configuration of the pkg extension, found
// in the "conf" section of the genesis file under the extension name.
//
//	{"conf": {"market": {"owner": "...", "listing_fee": {...}}}}
func InitConfig(db weave.KVStore, opts weave.Options, pkg string, conf Configuration) error {
	var sections weave.Options
	if err := opts.ReadOptions("conf", &sections); err != nil {
		return err
	}
	if _, ok := sections[pkg]; !ok {
		return errors.Wrapf(errors.ErrNotFound, "genesis has no %s configuration", pkg)
	}
	if err := sections.ReadOptions(pkg, conf); err != nil {
		return err
	}
	return Save(db, pkg, conf)
}
