package compiler

import (
	"io"
	"log/slog"
	"runtime"

	"gofront/pkg/parser"
	"gofront/pkg/resolver"
)

// Options configures a compilation.
type Options struct {
	// Logger receives debug output from every stage. Defaults to a logger
	// that discards everything.
	Logger *slog.Logger
	// MaxDepth bounds parser nesting. 0 uses the parser default.
	MaxDepth int
	// MaxErrors caps the resolver error list. 0 means no limit.
	MaxErrors int
	// Concurrency bounds how many units CompileFiles works on at once.
	// Defaults to GOMAXPROCS.
	Concurrency int
	// IncludeDir is the directory include lookups start from when the
	// source does not come from a file.
	IncludeDir string
}

// Option is a configuration function for a compilation.
type Option func(*Options)

// WithLogger sets the logger passed to every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMaxDepth sets the maximum parser nesting depth.
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithMaxErrors stops resolution once n errors are collected.
func WithMaxErrors(n int) Option {
	return func(o *Options) {
		o.MaxErrors = n
	}
}

// WithConcurrency sets how many units are compiled at once.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithIncludeDir sets the directory includes are resolved against.
func WithIncludeDir(dir string) Option {
	return func(o *Options) {
		o.IncludeDir = dir
	}
}

func newOptions(opts []Option) Options {
	o := Options{
		Concurrency: runtime.GOMAXPROCS(0),
		IncludeDir:  ".",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Concurrency < 1 {
		o.Concurrency = 1
	}
	return o
}

func (o Options) parser() parser.Options {
	return parser.Options{MaxDepth: o.MaxDepth, Logger: o.Logger}
}

func (o Options) resolver() resolver.Options {
	return resolver.Options{MaxErrors: o.MaxErrors, Logger: o.Logger}
}
