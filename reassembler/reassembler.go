// Package reassembler turns arbitrary transport byte chunks into whole MQTT
// frames, buffering an incomplete frame across Feed calls.
package reassembler

import (
	"errors"

	"github.com/axmq/mqttc/codec"
)

// pending is the (partial frame, raw bytes seen so far) snapshot held
// across Feed calls while a frame is still incomplete.
type pending struct {
	header  codec.FixedHeader
	rawBits []byte
}

// Reassembler accumulates inbound bytes and emits whole frames as soon as
// enough bytes have arrived. It holds no transport or handler references;
// it is a pure byte-stream state machine.
type Reassembler struct {
	buf *pending
}

// New returns an empty Reassembler.
func New() *Reassembler {
	return &Reassembler{}
}

// Snapshot describes the reassembler's buffered state, mirroring
// spec.md's `read_buffer` register so the engine can persist it into
// Registers without the reassembler depending on the registers package.
type Snapshot struct {
	Header  codec.FixedHeader
	RawBits []byte
	Present bool
}

// Snapshot returns the current buffered-partial-frame state.
func (r *Reassembler) Snapshot() Snapshot {
	if r.buf == nil {
		return Snapshot{}
	}
	return Snapshot{Header: r.buf.header, RawBits: r.buf.rawBits, Present: true}
}

// Restore installs a previously captured Snapshot, e.g. after the engine
// reconstructs a Reassembler for a fresh connection attempt.
func (r *Reassembler) Restore(s Snapshot) {
	if !s.Present {
		r.buf = nil
		return
	}
	r.buf = &pending{header: s.Header, rawBits: append([]byte(nil), s.RawBits...)}
}

// Feed processes one inbound byte chunk and returns every whole frame it
// completes, in wire order; bytes of a still-incomplete frame stay buffered
// for the next call (see Snapshot).
//
// Empty chunks are ignored. A chunk that ends inside a fixed header is
// buffered like any other incomplete frame. A malformed fixed header or a
// decode failure on a complete frame is fatal: the caller must treat the
// connection as unrecoverable (spec.md §4.2, §7).
func (r *Reassembler) Feed(chunk []byte) ([]codec.Frame, error) {
	if len(chunk) == 0 {
		return nil, nil
	}

	var frames []codec.Frame

	if r.buf != nil && r.buf.header.Type == 0 {
		// The buffered bytes end inside a fixed header: rejoin them with
		// the new chunk and decode again from the start.
		joined := append(append([]byte(nil), r.buf.rawBits...), chunk...)
		r.buf = nil
		return r.Feed(joined)
	}

	if r.buf == nil {
		partial, consumed, err := codec.DecodePartialFrame(chunk)
		if errors.Is(err, codec.ErrUnexpectedEOF) {
			// Fixed header not complete yet: keep the bytes, with the
			// header type left zero, until the rest arrives.
			r.buf = &pending{rawBits: append([]byte(nil), chunk...)}
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		have := uint32(len(partial.Payload))
		need := partial.Header.RemainingLength

		if have == need {
			frame, err := codec.DecodeFrameFromBytes(chunk[:consumed])
			if err != nil {
				return nil, err
			}
			frames = append(frames, frame)
			return r.continueWith(frames, chunk[consumed:])
		}

		// have < need: the whole chunk (including header bytes) becomes
		// the buffered raw bits; nothing left over to recurse on.
		r.buf = &pending{header: partial.Header, rawBits: append([]byte(nil), chunk...)}
		return frames, nil
	}

	have := uint32(len(r.buf.rawBits)) - headerSize(r.buf.header) + uint32(len(chunk))
	need := r.buf.header.RemainingLength

	switch {
	case have == need:
		whole := append(append([]byte(nil), r.buf.rawBits...), chunk...)
		r.buf = nil
		frame, err := codec.DecodeFrameFromBytes(whole)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
		return frames, nil

	case have < need:
		r.buf.rawBits = append(r.buf.rawBits, chunk...)
		return frames, nil

	default: // have > need
		priorPayload := uint32(len(r.buf.rawBits)) - headerSize(r.buf.header)
		closingLen := need - priorPayload
		closing := chunk[:closingLen]
		tail := chunk[closingLen:]

		whole := append(append([]byte(nil), r.buf.rawBits...), closing...)
		r.buf = nil
		frame, err := codec.DecodeFrameFromBytes(whole)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
		return r.continueWith(frames, tail)
	}
}

// continueWith recurses on a leftover tail after a frame has just been
// completed with r.buf cleared, merging any further frames it yields.
func (r *Reassembler) continueWith(frames []codec.Frame, tail []byte) ([]codec.Frame, error) {
	if len(tail) == 0 {
		return frames, nil
	}
	more, err := r.Feed(tail)
	if err != nil {
		return nil, err
	}
	return append(frames, more...), nil
}

// headerSize returns the number of fixed-header bytes (type/flags byte plus
// remaining-length VLI) at the front of a buffered partial's rawBits.
func headerSize(h codec.FixedHeader) uint32 {
	return uint32(1 + codec.SizeOfRemainingLength(h.RemainingLength))
}
