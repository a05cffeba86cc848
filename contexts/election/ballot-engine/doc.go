// Package ballotengine implements the vote-submission and round-lifecycle
// engine of the election context.
//
// The module owns the election phase state machine, atomic ballot batch
// submission with per-category approve quotas, and bulk result aggregation
// for admin review and live display. Business rules live in the
// application/domain layers; storage and transport concerns sit behind ports
// and adapters.
package ballotengine
