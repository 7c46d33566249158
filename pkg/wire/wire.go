// Package wire implements the two on-wire scalar shapes used throughout the
// GameMaker extension container formats: a 32-bit little-endian signed
// integer, and a length-prefixed byte string matching the ambient runtime's
// native AnsiString layout (a 32-bit LE length followed by raw bytes, no
// terminator, no encoding translation).
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// ReadInt32 reads a 32-bit little-endian signed integer.
func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("wire: read int32: %w", err)
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// WriteInt32 writes a 32-bit little-endian signed integer.
func WriteInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("wire: write int32: %w", err)
	}
	return nil
}

// ReadBool reads a 32-bit integer and reports whether it is non-zero. Bool
// fields in this format are always wire-encoded as int32.
func ReadBool(r io.Reader) (bool, error) {
	v, err := ReadInt32(r)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// WriteBool writes a bool as a 32-bit integer, 1 for true and 0 for false.
func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteInt32(w, 1)
	}
	return WriteInt32(w, 0)
}

// ReadString reads a length-prefixed AnsiString: a 32-bit LE length followed
// by that many raw bytes. The length is bounded only by what remains in the
// stream, per the wire format's own definition.
func ReadString(r io.Reader) (string, error) {
	n, err := ReadInt32(r)
	if err != nil {
		return "", fmt.Errorf("wire: read string length: %w", err)
	}
	if n < 0 {
		return "", fmt.Errorf("wire: negative string length %d", n)
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("wire: read string body (%d bytes): %w", n, err)
	}
	return string(buf), nil
}

// WriteString writes a length-prefixed AnsiString.
func WriteString(w io.Writer, s string) error {
	if err := WriteInt32(w, int32(len(s))); err != nil {
		return fmt.Errorf("wire: write string length: %w", err)
	}
	if len(s) == 0 {
		return nil
	}
	if _, err := w.Write([]byte(s)); err != nil {
		return fmt.Errorf("wire: write string body: %w", err)
	}
	return nil
}

// WriteInt32Opt writes an "optimize"-aware int32: when skip is true and
// required is false, fallback is written instead of value. This backs the
// writer-side field elision described for optimize mode (e.g. Prototype's
// editable flag is always zeroed when writing with optimize=true).
func WriteInt32Opt(w io.Writer, value int32, skip, required bool, fallback int32) error {
	out := value
	if skip && !required {
		out = fallback
	}
	return WriteInt32(w, out)
}

// WriteStringOpt is the string counterpart of WriteInt32Opt, used by the
// entry codec to elide recoverable fields in optimize mode (e.g. a
// function's symbol override when it equals its name).
func WriteStringOpt(w io.Writer, value string, skip, required bool, fallback string) error {
	out := value
	if skip && !required {
		out = fallback
	}
	return WriteString(w, out)
}
