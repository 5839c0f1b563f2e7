// Package senderfilter gates which raw messages enter the extraction
// pipeline based on the sender allow-list.
package senderfilter

import "github.com/rs/zerolog"

// Filter decides whether a message sender is allowed into the pipeline.
// Matching is exact and case-sensitive, mirroring how senders appear verbatim
// in message metadata. Rejection is a normal outcome, not a failure.
type Filter struct {
	enabled bool
	debug   bool
	allowed map[string]struct{}
	log     zerolog.Logger
}

// New builds a filter over the allow-listed senders. When enabled is false the
// filter admits every sender.
func New(allowed []string, enabled, debug bool, log zerolog.Logger) *Filter {
	set := make(map[string]struct{}, len(allowed))
	for _, s := range allowed {
		set[s] = struct{}{}
	}
	return &Filter{
		enabled: enabled,
		debug:   debug,
		allowed: set,
		log:     log,
	}
}

// Allow reports whether messages from sender should be processed. In debug
// mode each rejection emits a diagnostic record; the decision itself is never
// affected.
func (f *Filter) Allow(sender string) bool {
	if !f.enabled {
		return true
	}
	if _, ok := f.allowed[sender]; ok {
		return true
	}
	if f.debug {
		f.log.Debug().Str("sender", sender).Msg("sender rejected by filter")
	}
	return false
}
