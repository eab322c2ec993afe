// Package embedding turns text into unit-length vectors.
//
// Providers must return one vector per input text, in input order, all of
// the same dimension. Callers still re-normalise what they receive.
package embedding
