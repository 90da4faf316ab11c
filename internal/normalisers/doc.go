// Package normalisers provides implementations of the Normaliser interface
// for the supported upload formats. Each normaliser extracts ordered text
// segments, with structural locators, from one family of formats.
//
// Normalisers are registered with the Registry at startup.
package normalisers
