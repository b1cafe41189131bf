// Package probecache exposes the outcomes recorded by a previous run so that
// known-good streams are not probed again.
//
// The cache is the previous output file itself. Provider runs pass a
// fallback chain (country-specific output, then the provider-wide output);
// the first file that parses wins.
package probecache
