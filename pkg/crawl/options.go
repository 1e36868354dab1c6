package crawl

import (
	"github.com/charmbracelet/log"
)

// Options configures a [Crawler].
type Options struct {
	// MaxDepth stops expansion at this depth. The root is at depth 0; nodes
	// at MaxDepth are created but not crawled and report Truncated. Zero
	// means unlimited.
	MaxDepth int

	// Logger receives progress and failure output. Nil uses log.Default().
	Logger *log.Logger
}

// WithDefaults returns a copy of o with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	return o
}
