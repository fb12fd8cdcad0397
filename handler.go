package weave

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/iov-one/weave-market/errors"
)

// Handler is a core engine that can process a few specific messages
// This could represent "mint an asset", or "buy a listed item"
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx Context, store KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx Context, store KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like logging, or rollback, to many Handlers
type Decorator interface {
	Check(ctx Context, store KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx Context, store KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	// Handle assigns given handler to handle processing of every message
	// of provided type.
	// Using a message with an invalid path panics.
	Handle(Msg, Handler)
}

// CheckResult captures any non-error check result.
type CheckResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
}

// DeliverResult captures any non-error result of a delivered transaction.
type DeliverResult struct {
	// Data is a machine-parseable return value, like id of created entity
	Data []byte
	// Log is human-readable informational string
	Log string
	// Events is the append-only list of observations made while
	// delivering the transaction. It is empty when delivery failed.
	Events []Event
}

// Event is an observation emitted by a successful state change.
type Event struct {
	// Type is a path like name of the event, for example "market/sold".
	Type string `json:"type"`
	// Attributes are ordered key/value pairs describing the event.
	Attributes []EventAttribute `json:"attributes"`
}

// EventAttribute is a single key/value pair carried by an Event.
type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewEvent returns an event of given type. Attributes are declared as
// alternating key and value arguments and formatted with %v.
func NewEvent(typ string, keyvals ...interface{}) Event {
	if len(keyvals)%2 != 0 {
		panic("event attributes must be key value pairs")
	}
	ev := Event{Type: typ}
	for i := 0; i < len(keyvals); i += 2 {
		ev.Attributes = append(ev.Attributes, EventAttribute{
			Key:   fmt.Sprint(keyvals[i]),
			Value: fmt.Sprint(keyvals[i+1]),
		})
	}
	return ev
}

// Attr returns the value of the attribute with given key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot decode %q option: %s", key, err)
	}
	return nil
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// Persistent supports Marshal and Unmarshal
//
// This is separated from Marshal, as this almost always requires
// a pointer, and functions that only need to marshal bytes can
// use the Marshaller interface to access non-pointers.
//
// As with Marshaller, this may do internal validation on the data
// and errors should be expected.
type Persistent interface {
	Marshaller
	Unmarshal([]byte) error
}

// Marshaller is anything that can be represented in binary
//
// Marshall may validate the data before serializing it and
// unless you previously validated the struct,
// errors should be expected.
type Marshaller interface {
	Marshal() ([]byte, error)
}

// Msg is message for the blockchain to take an action
// (Make a state transition). It is just the concrete type
// of a transaction.
type Msg interface {
	Persistent

	// Validate performs a sanity checks on this message. It returns an
	// error if at least one of the checks fails.
	Validate() error

	// Path returns path that is used to route this message to its handler
	Path() string
}

// Tx represent the data sent from the user to the chain.
//
// Caller is the explicit identity on whose behalf the message is executed.
// It is never inferred from anything else.
type Tx interface {
	// GetMsg returns the action we wish to communicate
	GetMsg() (Msg, error)
	// GetCaller returns the account that submitted the message
	GetCaller() Address
}

// LoadMsg extracts the message represented by given transaction into given
// destination. Before returning message validation method is called.
func LoadMsg(tx Tx, destination interface{}) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get transaction message")
	}
	if msg == nil {
		return errors.Wrap(errors.ErrMsg, "no message")
	}

	switch ptr := destination.(type) {
	case *Msg:
		*ptr = msg
	default:
		if err := assignMsg(msg, destination); err != nil {
			return err
		}
	}

	if err := msg.Validate(); err != nil {
		return errors.Wrap(err, "invalid message")
	}
	return nil
}

// validPath is the regexp every message path must match.
var validPath = regexp.MustCompile(`^[a-z0-9_]+/[a-z0-9_]+$`).MatchString

// IsValidPath returns true if given path can be used to route a message.
func IsValidPath(path string) bool {
	return validPath(path)
}
