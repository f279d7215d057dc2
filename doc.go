// Package admrender implements the streaming render pipeline of an
// object-based audio renderer conforming to EBU ADM (Audio Definition
// Model) semantics. It consumes a sequence of multi-track PCM samples
// together with time-bounded, per-object metadata, and produces
// multi-channel PCM aligned to a target loudspeaker layout.
//
// # Basic usage
//
//	r, err := admrender.New(admrender.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.SetRenderingItems(items); err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    out, err := r.Render(input)
//	    ...
//	}
//	tail, err := r.GetTail()
//
// # Scope
//
// This package covers the streaming render pipeline: block-aligned
// sample flow, per-item metadata-to-gain interpretation with
// interpolation, the three rendering modes (Object, DirectSpeakers,
// HOA), and the shared DSP primitives backing them. The ADM XML/BW64
// file parser, the ADM-tree-to-rendering-item selector, and the
// loudspeaker/HOA panning geometries are external collaborators; this
// package only depends on their contracts (internal/psp,
// internal/layout, internal/hoa).
//
// # Thread safety
//
// A Renderer is not safe for concurrent use; it is a single-threaded,
// synchronous state machine driven by successive Render calls.
package admrender
