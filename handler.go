package chainz

import (
	"context"

	"github.com/zoobzio/capitan"
)

// ReportHandler consumes the report of a finished chain call. Handlers run
// synchronously on the calling goroutine; a slow handler delays the caller.
type ReportHandler func(*Report)

// LogFailures returns a handler that emits one signal per recorded failure,
// at Error level for fatal failures and Warn level otherwise. Wire a capitan
// listener to route the signals wherever your logs go.
//
//	chain.OnFailures(chainz.LogFailures())
func LogFailures() ReportHandler {
	return func(r *Report) {
		ctx := context.Background()
		for _, f := range r.Failures {
			if f.Fatal {
				capitan.Error(ctx, SignalChainFailure,
					FieldChain.Field(string(r.Chain)),
					FieldSource.Field(f.Source),
					FieldError.Field(f.Err.Error()),
					FieldTimestamp.Field(float64(f.Timestamp.Unix())),
				)
				continue
			}
			capitan.Warn(ctx, SignalChainFailure,
				FieldChain.Field(string(r.Chain)),
				FieldSource.Field(f.Source),
				FieldError.Field(f.Err.Error()),
				FieldTimestamp.Field(float64(f.Timestamp.Unix())),
			)
		}
	}
}
