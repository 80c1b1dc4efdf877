// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metadata checks the off-chain references stored with a
// collection. References are never fetched.
package metadata

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/purell"
)

const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
	MaxURILen    = 200
)

var (
	ErrEmptyName     = errors.New("name is empty")
	ErrEmptyURI      = errors.New("uri is empty")
	ErrNameTooLong   = errors.New("name is too long")
	ErrSymbolTooLong = errors.New("symbol is too long")
	ErrURITooLong    = errors.New("uri is too long")
	ErrMalformedURI  = errors.New("uri is malformed")
)

const normalizeFlags = purell.FlagsSafe | purell.FlagRemoveDuplicateSlashes

// Validate checks [name] and [uri] against the limits a collection record
// accepts.
func Validate(name, uri string) error {
	switch {
	case len(name) == 0:
		return ErrEmptyName
	case len(name) > MaxNameLen:
		return fmt.Errorf("%w: %d bytes > %d", ErrNameTooLong, len(name), MaxNameLen)
	case len(uri) == 0:
		return ErrEmptyURI
	case len(uri) > MaxURILen:
		return fmt.Errorf("%w: %d bytes > %d", ErrURITooLong, len(uri), MaxURILen)
	}
	_, err := Normalize(uri)
	return err
}

// ValidateSymbol checks a token symbol. Symbols may be empty.
func ValidateSymbol(symbol string) error {
	if len(symbol) > MaxSymbolLen {
		return fmt.Errorf("%w: %d bytes > %d", ErrSymbolTooLong, len(symbol), MaxSymbolLen)
	}
	return nil
}

// Normalize returns the canonical form of an absolute uri.
func Normalize(uri string) (string, error) {
	clean, err := purell.NormalizeURLString(uri, normalizeFlags)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedURI, err)
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedURI, err)
	}
	if u.Scheme == "" {
		return "", fmt.Errorf("%w: missing scheme", ErrMalformedURI)
	}
	if u.Host == "" && u.Opaque == "" {
		return "", fmt.Errorf("%w: missing host", ErrMalformedURI)
	}
	return clean, nil
}
