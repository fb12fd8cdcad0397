package utils

import (
	"time"

	"github.com/iov-one/weave-market"
	"github.com/tendermint/tendermint/libs/log"
)

// Logging writes one entry per processed message to the context logger.
// Failures are logged as errors. Delivered messages are logged at info
// level, checks at debug level.
type Logging struct{}

var _ weave.Decorator = Logging{}

func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, db, tx)
	logger := txLogger(ctx, tx, start)
	if err != nil {
		logger.Error("check failed", "err", err)
		return res, err
	}
	logger.Debug(res.Log)
	return res, nil
}

func (Logging) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, db, tx)
	logger := txLogger(ctx, tx, start)
	if err != nil {
		logger.Error("delivery failed", "err", err)
		return res, err
	}
	// The log can be empty, the entry is still useful for the attributes.
	logger.Info(res.Log, "events", len(res.Events))
	return res, nil
}

// txLogger returns the context logger annotated with the caller, the
// message path and the processing time in microseconds.
func txLogger(ctx weave.Context, tx weave.Tx, start time.Time) log.Logger {
	logger := weave.GetLogger(ctx).With(
		"caller", tx.GetCaller(),
		"duration", time.Since(start)/time.Microsecond,
	)
	if msg, err := tx.GetMsg(); err == nil && msg != nil {
		logger = logger.With("path", msg.Path())
	}
	return logger
}
