package gconf

import (
	"reflect"

	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// OwnedConfig is a configuration with an owner. A configuration update
// must be submitted by the owner in order to be applied.
type OwnedConfig interface {
	Configuration
	GetOwner() weave.Address
}

// UpdateConfigurationHandler applies the "Patch" field of a message to the
// stored configuration of a package.
type UpdateConfigurationHandler struct {
	pkg string
	// newConfig returns an empty instance used to load the data.
	newConfig func() OwnedConfig
}

var _ weave.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a message handler that process
// configuration patch message.
//
// The message must be a pointer to a struct with a "Patch" field holding a
// configuration of the same type as the stored one. Only non zero fields of
// the patch are applied. The caller of the transaction must be the current
// configuration owner.
func NewUpdateConfigurationHandler(pkg string, newConfig func() OwnedConfig) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		newConfig: newConfig,
	}
}

func (h UpdateConfigurationHandler) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.applyTx(store, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	conf, err := h.applyTx(store, tx)
	if err != nil {
		return nil, err
	}
	ev := weave.NewEvent(h.pkg+"/configured", "owner", conf.GetOwner())
	return &weave.DeliverResult{Events: []weave.Event{ev}}, nil
}

func (h UpdateConfigurationHandler) applyTx(store weave.KVStore, tx weave.Tx) (OwnedConfig, error) {
	config := h.newConfig()
	if err := Load(store, h.pkg, config); err != nil {
		return nil, errors.Wrap(err, "load current configuration")
	}
	owner := config.GetOwner()
	if owner == nil {
		return nil, errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
	}
	if !owner.Equals(tx.GetCaller()) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "only the configuration owner can update it")
	}

	payload, err := patchPayload(tx)
	if err != nil {
		return nil, errors.Wrap(err, "cannot get message payload")
	}
	if err := patch(config, payload); err != nil {
		return nil, errors.Wrap(err, "cannot patch config with message payload")
	}
	if err := Save(store, h.pkg, config); err != nil {
		return nil, errors.Wrap(err, "cannot save updated config")
	}
	return config, nil
}

func patch(config OwnedConfig, payload OwnedConfig) error {
	if reflect.TypeOf(payload) != reflect.TypeOf(config) {
		return errors.Wrapf(errors.ErrMsg, "config in message %T doesn't match store %T", payload, config)
	}

	cval := reflect.ValueOf(config).Elem()
	pval := reflect.ValueOf(payload).Elem()

	for i := 0; i < cval.NumField(); i++ {
		got := pval.Field(i)
		// Zero values do not update the original configuration.
		if isZero(got) {
			continue
		}
		cval.Field(i).Set(got)
	}
	return nil
}

// isZero returns true if given value represents a zero value of a given type.
func isZero(val reflect.Value) bool {
	zero := reflect.Zero(val.Type()).Interface()
	return reflect.DeepEqual(val.Interface(), zero)
}

// patchPayload expects the transaction to have a message with "Patch" field of
// the same type as the configuration. Content of this field is extracted and
// returned.
func patchPayload(tx weave.Tx) (OwnedConfig, error) {
	var msg weave.Msg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, err
	}

	pval := reflect.ValueOf(msg)
	if pval.Kind() != reflect.Ptr || pval.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "invalid message container value: %T", msg)
	}
	field := pval.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInput, "%T has no \"Patch\" field", msg)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrState, `"Patch" field is required`)
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrap(errors.ErrInput, `"Patch" field is of a wrong type`)
	}
	return payload, nil
}
