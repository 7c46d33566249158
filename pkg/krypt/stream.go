package krypt

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
)

var (
	// ErrInvalidSeek is returned when a seek on a non-identical additive
	// cipher would drive the byte counter negative; the additive cipher's
	// arithmetic is only well-defined moving forward from InitState.
	ErrInvalidSeek = errors.New("krypt: invalid seek, additive cipher counter would go negative")

	// ErrCipherInvariantViolation is returned by Ensure when an existing
	// Stream is handed off mid-read/write but is not currently in an
	// identical (pass-through) state.
	ErrCipherInvariantViolation = errors.New("krypt: cipher was not identical at handoff")
)

// Stream transparently applies GMKrypt to an inner stream, exposing the
// same Reader/Writer/Seeker surface. A Stream is constructed for exactly
// one direction (Encode or Decode) and wraps exactly one inner stream.
type Stream struct {
	inner  io.ReadWriteSeeker
	mode   Mode
	state  *State
	logger hclog.Logger
	pos    int64
	owns   bool
}

// New wraps inner in a Stream starting in identity cipher state
// (IdentitySeed, additive=false). Call InitState to key it for real.
func New(inner io.ReadWriteSeeker, mode Mode, logger hclog.Logger) *Stream {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	st := NewState(mode)
	st.InitState(IdentitySeed, false)
	return &Stream{inner: inner, mode: mode, state: st, logger: logger}
}

// SetOwnsInner marks whether Close should close the inner stream too.
func (s *Stream) SetOwnsInner(owns bool) {
	s.owns = owns
}

// InitState re-keys the cipher in place, mid-stream if necessary. This is
// idempotent and is how GEX re-keys the stream right after reading the key
// seed through an identity-state wrapper.
func (s *Stream) InitState(seed int32, additive bool) bool {
	identical := s.state.InitState(seed, additive)
	s.logger.Trace("krypt: init state", "seed", seed, "additive", additive, "identical", identical)
	return identical
}

// IsIdenticalCrypto reports whether the stream is currently a pass-through.
func (s *Stream) IsIdenticalCrypto() bool {
	return s.state.IsIdentical()
}

// KeySeed returns the seed the stream is currently keyed with.
func (s *Stream) KeySeed() int32 {
	return s.state.KeySeed
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.inner.Read(p)
	if n > 0 {
		s.state.Transform(p[:n])
		s.pos += int64(n)
	}
	return n, err
}

func (s *Stream) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	s.state.Transform(buf)

	n, err := s.inner.Write(buf)
	s.pos += int64(n)
	return n, err
}

// Seek forwards to the inner stream after validating and updating the
// cipher's byte counter. A non-identical additive cipher rejects any seek
// that would drive the counter negative.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	newPos, err := s.resolveSeekTarget(offset, whence)
	if err != nil {
		return 0, err
	}

	delta := newPos - s.pos
	newCounter := int64(s.state.counter) + delta
	if !s.state.IsIdentical() && s.state.Additive && newCounter < 0 {
		return 0, ErrInvalidSeek
	}

	abs, err := s.inner.Seek(offset, whence)
	if err != nil {
		return 0, err
	}

	s.pos = abs
	if newCounter < 0 {
		newCounter = 0
	}
	s.state.counter = uint64(newCounter)
	return abs, nil
}

func (s *Stream) resolveSeekTarget(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		return offset, nil
	case io.SeekCurrent:
		return s.pos + offset, nil
	case io.SeekEnd:
		cur, err := s.inner.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0, err
		}
		end, err := s.inner.Seek(0, io.SeekEnd)
		if err != nil {
			return 0, err
		}
		if _, err := s.inner.Seek(cur, io.SeekStart); err != nil {
			return 0, err
		}
		return end + offset, nil
	default:
		return 0, fmt.Errorf("krypt: invalid whence %d", whence)
	}
}

// Close releases the inner stream if this Stream was constructed to own it.
func (s *Stream) Close() error {
	if !s.owns {
		return nil
	}
	if c, ok := s.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Ensure returns existing if non-nil, after asserting it is currently in an
// identical cipher state, or else constructs a fresh identity Stream around
// inner. This is the EnsureCryptoStream pattern: GEX embeds its key seed
// inside the already-encrypted body, so the cipher must already be running
// (in identity configuration) when that seed is read, and is then re-keyed
// in place via InitState rather than wrapped a second time.
func Ensure(existing *Stream, inner io.ReadWriteSeeker, mode Mode, logger hclog.Logger) (*Stream, error) {
	if existing != nil {
		if !existing.IsIdenticalCrypto() {
			return nil, ErrCipherInvariantViolation
		}
		return existing, nil
	}
	return New(inner, mode, logger), nil
}
