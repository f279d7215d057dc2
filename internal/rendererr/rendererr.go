// Package rendererr defines the closed taxonomy of fatal errors the
// renderer can return: timing faults, metadata starvation, and
// configuration the renderer cannot honour. Non-fatal conditions are
// recorded as warnings (see internal/diag), not returned as errors.
package rendererr

import "fmt"

// TimingError reports a violation of the timing invariants for a
// rendering item's metadata sequence: a block that starts before the
// previous one ends, a block extending past its object's bounds, a block
// giving only one of rtime and duration, or a jumpPosition interpolation
// length longer than its block.
type TimingError struct {
	Channel string
	Detail  string
	Cause   error
}

func (e *TimingError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("timing error on channel %q: %s", e.Channel, e.Detail)
	}
	return fmt.Sprintf("timing error: %s", e.Detail)
}

func (e *TimingError) Unwrap() error { return e.Cause }

// MetadataUnderrunError reports that a BlockProcessingChannel received a
// new metadata block whose first sample lies before the start of the
// sample window being rendered, i.e. samples it covers were already
// rendered without it. AtBlock is that block's first sample index.
type MetadataUnderrunError struct {
	Channel string
	AtBlock int64
	Cause   error
}

func (e *MetadataUnderrunError) Error() string {
	return fmt.Sprintf("metadata underrun on channel %q at block %d", e.Channel, e.AtBlock)
}

func (e *MetadataUnderrunError) Unwrap() error { return e.Cause }

// UnsupportedConfigError reports a rendering item or configuration value
// the renderer has no code path for: an output layout with no channels,
// an unknown rendering item type, more than one HOA item, FuMa
// normalization above 3rd order, or too few HOA design points for the
// requested order.
type UnsupportedConfigError struct {
	What  string
	Cause error
}

func (e *UnsupportedConfigError) Error() string {
	return fmt.Sprintf("unsupported configuration: %s", e.What)
}

func (e *UnsupportedConfigError) Unwrap() error { return e.Cause }
