package chainz

import "github.com/zoobzio/capitan"

// Signal definitions for chain events.
// Signals follow the pattern: <component>.<event>.
var (
	// Chain signals.
	SignalChainFatal = capitan.NewSignal(
		"chain.fatal",
		"Chain call finished unsuccessfully because a required step failed",
	)
	SignalChainFailure = capitan.NewSignal(
		"chain.failure",
		"A step inside a chain recorded a failure",
	)

	// Match signals.
	SignalMatchMismatch = capitan.NewSignal(
		"match.mismatch",
		"Match received an input whose length does not equal its branch count",
	)

	// Loop signals.
	SignalLoopNotIterable = capitan.NewSignal(
		"loop.not-iterable",
		"Each received an input that cannot be iterated",
	)

	// Registry signals.
	SignalRegistryCollision = capitan.NewSignal(
		"registry.collision",
		"Registry rejected a chain because the name is already taken",
	)
)

// Common field keys using capitan primitive types.
// All keys use primitive types to avoid custom struct serialization.
var (
	// Common fields.
	FieldChain     = capitan.NewStringKey("chain")      // Owning chain name
	FieldSource    = capitan.NewStringKey("source")     // Failure label path
	FieldError     = capitan.NewStringKey("error")      // Error message
	FieldTimestamp = capitan.NewFloat64Key("timestamp") // Unix timestamp

	// Report fields.
	FieldFailures = capitan.NewIntKey("failures") // Recorded failure count

	// Match fields.
	FieldExpected = capitan.NewIntKey("expected") // Branch count
	FieldReceived = capitan.NewIntKey("received") // Input length, -1 when not iterable

	// Registry fields.
	FieldNamespace = capitan.NewStringKey("namespace") // Registry namespace
)
