package config

const (
	// DefaultSearchTimeoutMS is the per-adapter budget for one fan-out call.
	DefaultSearchTimeoutMS = 10000

	// MaxHistoryMessages caps how much caller-supplied conversation history
	// is fed to the generator (most recent first).
	MaxHistoryMessages = 10

	// TopKGroundingResults caps how many ranked results are folded into the
	// grounding context of the answer prompt.
	TopKGroundingResults = 6

	// MaxQueryLength bounds inbound query text. Backends reject absurdly
	// long queries anyway; failing early gives a clearer error.
	MaxQueryLength = 2000

	// RelevanceBatchSize is how many results are scored per AI ranking call.
	RelevanceBatchSize = 15

	// DefaultSessionListLimit is the page size for session listings.
	DefaultSessionListLimit = 50
)
