package inbox

import "github.com/bft-labs/airship/pkg/airship"

// WithInbox returns an airship Option that enables the downlink inbox.
//
// Usage:
//
//	st, err := airship.New(cfg, inbox.WithInbox(inbox.DefaultConfig()))
func WithInbox(cfg Config) airship.Option {
	return airship.WithPlugin(New(cfg))
}
