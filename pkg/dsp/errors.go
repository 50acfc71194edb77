// Package dsp holds the pieces shared by every signal-processing package in
// this module.
package dsp

import "errors"

// ErrInvalidParameter is returned before any computation takes place when an
// argument violates a precondition: a non-positive sample rate, an inverted
// or empty band, a negative power level, or an empty input.
var ErrInvalidParameter = errors.New("invalid parameter")
