package dolphin

import (
	"github.com/Moonlight-Companies/gologger/logger"
)

// Option configures an Engine
type Option func(*Engine)

// WithProcessNames replaces the executable names the default locator looks for
func WithProcessNames(names ...string) Option {
	return func(e *Engine) {
		e.names = names
	}
}

// WithLocator replaces process discovery entirely
func WithLocator(l Locator) Option {
	return func(e *Engine) {
		e.locator = l
	}
}

// WithMapper replaces the platform's region discovery strategies
func WithMapper(m RegionMapper) Option {
	return func(e *Engine) {
		e.mapper = m
	}
}

// WithValidator replaces the MEM1 header check used by the default strategies
func WithValidator(v Validator) Option {
	return func(e *Engine) {
		e.validator = v
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}
