// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package env loads configuration structs from environment variables.
package env

import (
	"github.com/caarlos0/env/v7"
)

type Options struct {
	// Environment keys and values used instead of the process environment.
	Environment map[string]string

	// TagName specifies another tag name to use rather than the default env.
	TagName string

	// RequiredIfNoDef marks every variable without envDefault as required.
	RequiredIfNoDef bool

	// OnSet is called for every field that is set.
	OnSet env.OnSetFn

	// Prefix is prepended to every key, e.g. "STOMP_WS_".
	Prefix string
}

// Parse fills v from the environment.
func Parse(v interface{}, opts ...Options) error {
	altOpts := make([]env.Options, 0, len(opts))
	for _, opt := range opts {
		altOpts = append(altOpts, env.Options{
			Environment:     opt.Environment,
			TagName:         opt.TagName,
			RequiredIfNoDef: opt.RequiredIfNoDef,
			OnSet:           opt.OnSet,
			Prefix:          opt.Prefix,
		})
	}

	return env.Parse(v, altOpts...)
}

// Load returns a T filled from the environment.
func Load[T any](opts ...Options) (T, error) {
	var cfg T
	err := Parse(&cfg, opts...)
	return cfg, err
}
