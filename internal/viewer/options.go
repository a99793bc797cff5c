package viewer

import (
	"fmt"

	"github.com/mcncl/jsonviewer/internal/errors"
)

// Default values applied by Mount before any Option.
const (
	DefaultStringLengthThreshold = 50
)

// Key namings accepted by Options.KeyNaming for untagged struct fields.
const (
	KeyNamingNone       = ""
	KeyNamingSnake      = "snake"
	KeyNamingCamel      = "camel"
	KeyNamingLowerCamel = "lower-camel"
	KeyNamingKebab      = "kebab"
)

// Options controls a single render. The zero value is not the default
// configuration; use DefaultOptions.
type Options struct {
	// Collapsed starts the whole tree collapsed.
	Collapsed bool
	// RootCollapsable prepends a toggle to a collapsible root value.
	RootCollapsable bool
	// WithQuotes wraps object keys in quotes.
	WithQuotes bool
	// WithLinks renders http, https, ftp and ftps strings as hyperlinks.
	WithLinks bool
	// BigNumbers renders extended-precision number wrappers with their own
	// string conversion instead of as objects.
	BigNumbers bool
	// StringLengthThreshold is the length above which strings are truncated.
	// Negative values are treated as zero.
	StringLengthThreshold int
	// MaxDepth stops descending into containers nested deeper than this.
	// Zero means unlimited.
	MaxDepth int
	// KeyNaming transforms the names of struct fields that have no json tag.
	KeyNaming string
}

// DefaultOptions returns the configuration Mount starts from.
func DefaultOptions() Options {
	return Options{
		Collapsed:             false,
		RootCollapsable:       true,
		WithQuotes:            false,
		WithLinks:             true,
		BigNumbers:            false,
		StringLengthThreshold: DefaultStringLengthThreshold,
	}
}

// Validate reports options that Render would silently clamp or ignore.
func (o Options) Validate() error {
	if o.StringLengthThreshold < 0 {
		return fmt.Errorf("string length threshold %d is negative: %w", o.StringLengthThreshold, errors.ErrInvalidOption)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("max depth %d is negative: %w", o.MaxDepth, errors.ErrInvalidOption)
	}
	switch o.KeyNaming {
	case KeyNamingNone, KeyNamingSnake, KeyNamingCamel, KeyNamingLowerCamel, KeyNamingKebab:
	default:
		return fmt.Errorf("unknown key naming %q: %w", o.KeyNaming, errors.ErrInvalidOption)
	}
	return nil
}

func (o Options) normalized() Options {
	if o.StringLengthThreshold < 0 {
		o.StringLengthThreshold = 0
	}
	if o.MaxDepth < 0 {
		o.MaxDepth = 0
	}
	return o
}

// Option overrides one field of the default Options.
type Option func(*Options)

// WithOptions replaces every field with o.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// Collapsed sets Options.Collapsed.
func Collapsed(v bool) Option {
	return func(o *Options) { o.Collapsed = v }
}

// RootCollapsable sets Options.RootCollapsable.
func RootCollapsable(v bool) Option {
	return func(o *Options) { o.RootCollapsable = v }
}

// WithQuotes sets Options.WithQuotes.
func WithQuotes(v bool) Option {
	return func(o *Options) { o.WithQuotes = v }
}

// WithLinks sets Options.WithLinks.
func WithLinks(v bool) Option {
	return func(o *Options) { o.WithLinks = v }
}

// BigNumbers sets Options.BigNumbers.
func BigNumbers(v bool) Option {
	return func(o *Options) { o.BigNumbers = v }
}

// StringLengthThreshold sets Options.StringLengthThreshold.
func StringLengthThreshold(n int) Option {
	return func(o *Options) { o.StringLengthThreshold = n }
}

// MaxDepth sets Options.MaxDepth.
func MaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// KeyNaming sets Options.KeyNaming.
func KeyNaming(naming string) Option {
	return func(o *Options) { o.KeyNaming = naming }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
