package gain

import "github.com/llehouerou/go-admrender/internal/rendererr"

// State is a BlockProcessingChannel's position in its lifecycle.
type State int

const (
	// Empty: no blocks queued yet and the metadata source hasn't been
	// asked to produce the first one.
	Empty State = iota
	// Active: at least one block has been produced and the channel is
	// still able to ask its source for more once the queue drains.
	Active
	// Finished: the metadata source has signalled it has nothing more
	// to give and the queue has been fully drained.
	Finished
)

// Interpreter turns the next lazily-produced metadata value from a
// source into zero or more ProcessingBlocks. Returning ok=false with no
// error signals the source is exhausted.
type Interpreter interface {
	Next() (blocks []ProcessingBlock, ok bool, err error)
}

// BlockProcessingChannel is a FIFO queue of ProcessingBlocks fed lazily
// by an Interpreter, used so the renderer never has to materialize a
// whole item's metadata up front. Pop removes and returns the block at
// the front of the queue, pulling more blocks from the interpreter as
// needed.
type BlockProcessingChannel struct {
	interp      Interpreter
	queue       []ProcessingBlock
	state       State
	headApplied bool // queue[0] has already been applied to some samples
}

// NewBlockProcessingChannel returns a channel reading blocks lazily
// from interp.
func NewBlockProcessingChannel(interp Interpreter) *BlockProcessingChannel {
	return &BlockProcessingChannel{interp: interp, state: Empty}
}

// State reports the channel's current lifecycle state.
func (c *BlockProcessingChannel) State() State { return c.state }

// fill pulls the next batch of blocks from the interpreter if the queue
// is empty and the source isn't already known to be exhausted.
func (c *BlockProcessingChannel) fill() error {
	if len(c.queue) > 0 || c.state == Finished {
		return nil
	}
	blocks, ok, err := c.interp.Next()
	if err != nil {
		return err
	}
	if !ok {
		c.state = Finished
		return nil
	}
	c.queue = append(c.queue, blocks...)
	c.state = Active
	return nil
}

// Peek returns the block at the front of the queue without removing
// it, pulling from the interpreter if necessary. ok is false if the
// channel is Finished with nothing left.
func (c *BlockProcessingChannel) Peek() (block ProcessingBlock, ok bool, err error) {
	if err := c.fill(); err != nil {
		return nil, false, err
	}
	if len(c.queue) == 0 {
		return nil, false, nil
	}
	return c.queue[0], true, nil
}

// Pop removes and returns the block at the front of the queue, pulling
// from the interpreter if necessary.
func (c *BlockProcessingChannel) Pop() (block ProcessingBlock, ok bool, err error) {
	block, ok, err = c.Peek()
	if err != nil || !ok {
		return nil, ok, err
	}
	c.queue = c.queue[1:]
	c.headApplied = false
	return block, true, nil
}

// Done reports whether the channel is Finished and has no queued
// blocks left, i.e. there is nothing more Pop could ever return.
func (c *BlockProcessingChannel) Done() bool {
	return c.state == Finished && len(c.queue) == 0
}

// Process applies this channel's queued blocks to the sample window
// [startSample, startSample+len(in[0])), pulling more blocks from the
// interpreter as needed and popping each block once it's been fully
// consumed. A sample range the metadata source has no block for yet
// (a gap before the first block, or after the source is exhausted) is
// left silent. name identifies the channel in error messages.
func (c *BlockProcessingChannel) Process(name string, startSample int64, in, out [][]float64) error {
	n := len(in[0])
	endSample := startSample + int64(n)
	pos := startSample

	for pos < endSample {
		block, ok, err := c.Peek()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		iv := block.Interval()
		firstSample := iv.Start.Ceil()
		if firstSample < startSample && !c.headApplied {
			return &rendererr.MetadataUnderrunError{Channel: name, AtBlock: firstSample}
		}

		open := iv.End.IsInf()
		lastSample := endSample
		if !open {
			lastSample = iv.End.Ceil()
		}

		if firstSample > pos {
			if firstSample < endSample {
				pos = firstSample
			} else {
				pos = endSample
			}
			continue
		}

		segEnd := lastSample
		if segEnd > endSample {
			segEnd = endSample
		}
		if segEnd > pos {
			offset := int(pos - firstSample)
			segLen := int(segEnd - pos)
			segIn := windowChannels(in, int(pos-startSample), segLen)
			segOut := windowChannels(out, int(pos-startSample), segLen)
			block.Apply(segIn, offset, segOut)
			c.headApplied = true
			pos = segEnd
		}

		if !open && lastSample <= pos {
			if _, _, err := c.Pop(); err != nil {
				return err
			}
			continue
		}
		break
	}

	return nil
}

// windowChannels returns a [off:off+n] sub-slice of each row of buf.
func windowChannels(buf [][]float64, off, n int) [][]float64 {
	out := make([][]float64, len(buf))
	for i, row := range buf {
		out[i] = row[off : off+n]
	}
	return out
}
