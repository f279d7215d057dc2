// Package diag records the renderer's non-fatal warnings: conditions
// spec.md classifies as "record, don't raise" (LFE frequency/label
// mismatches, screenRef metadata on an HOA item, frequency metadata on
// an HOA item, unknown configuration option keys). A Recorder keeps
// every warning it sees and also forwards it to a structured logger, so
// a caller driving the renderer interactively sees warnings as they
// happen without having to poll the in-memory log.
package diag

import (
	"fmt"

	charmlog "github.com/charmbracelet/log"
)

// Code identifies the kind of warning recorded.
type Code string

const (
	CodeLFEFrequencyMismatch Code = "lfe_frequency_mismatch"
	CodeLFELabelMismatch     Code = "lfe_label_mismatch"
	CodeScreenRefOnHOA       Code = "screen_ref_on_hoa"
	CodeFrequencyOnHOA       Code = "frequency_on_hoa"
	CodeUnknownConfigKey     Code = "unknown_config_key"
)

// Warning is a single recorded non-fatal condition.
type Warning struct {
	Code    Code
	Message string
	Fields  map[string]any
}

// Recorder accumulates Warnings and mirrors them to a structured logger.
type Recorder struct {
	logger   *charmlog.Logger
	warnings []Warning
}

// NewRecorder builds a Recorder that logs through logger. A nil logger
// is replaced with one writing to charmlog's default discard-free
// output; callers that don't care about live logging can pass nil and
// only inspect Warnings() after rendering.
func NewRecorder(logger *charmlog.Logger) *Recorder {
	if logger == nil {
		logger = charmlog.New(nil)
		logger.SetLevel(charmlog.WarnLevel)
	}
	return &Recorder{logger: logger}
}

// Warn records w and logs it at warn level.
func (r *Recorder) Warn(w Warning) {
	r.warnings = append(r.warnings, w)

	args := make([]any, 0, len(w.Fields)*2+2)
	args = append(args, "code", string(w.Code))
	for k, v := range w.Fields {
		args = append(args, k, v)
	}
	r.logger.Warn(w.Message, args...)
}

// Warnf is a convenience wrapper building a Warning from a code and a
// printf-style message with no structured fields.
func (r *Recorder) Warnf(code Code, format string, a ...any) {
	r.Warn(Warning{Code: code, Message: fmt.Sprintf(format, a...)})
}

// Warnings returns every warning recorded so far, oldest first. The
// returned slice is owned by the caller; the Recorder keeps its own.
func (r *Recorder) Warnings() []Warning {
	out := make([]Warning, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Reset discards all recorded warnings without touching the logger.
func (r *Recorder) Reset() {
	r.warnings = nil
}
