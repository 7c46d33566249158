package ext

import (
	"fmt"
	"io"

	"github.com/gm8ext/gex/pkg/wire"
)

// Dialect selects the wire layout an entry is serialized with. Its absolute
// value lives in the entry's leading revision integer; the sign of that
// integer (on write only) selects optimize mode.
type Dialect int32

const (
	// DialectDefault ("700") is used inside GED/GMP files and inside the
	// encrypted body of a GEX.
	DialectDefault Dialect = 700
	// DialectGEX ("701") is used only at the root of a GEX, wrapping the
	// key seed and the nested default-dialect prototype.
	DialectGEX Dialect = 701
)

// readRevision reads the leading revision integer of an entry and resolves
// it to a dialect. A negative revision has no meaning on read (optimize is
// a write-only concept; readers accept either form), so only the magnitude
// is inspected.
func readRevision(r io.Reader) (Dialect, error) {
	v, err := wire.ReadInt32(r)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = -v
	}
	d := Dialect(v)
	if d != DialectDefault && d != DialectGEX {
		return 0, fmt.Errorf("%w: got %d", ErrUnsupportedRevision, v)
	}
	return d, nil
}

// writeRevision writes an entry's leading revision integer, negating it
// when optimize is requested.
func writeRevision(w io.Writer, dialect Dialect, optimize bool) error {
	v := int32(dialect)
	if optimize {
		v = -v
	}
	return wire.WriteInt32(w, v)
}

// requireDialect is the explicit per-variant capability check described in
// the design notes: rather than sharing an abstract "not implemented"
// method across all entry kinds, each variant states exactly which
// dialect(s) it supports and fails loudly otherwise.
func requireDialect(got, want Dialect, what string) error {
	if got != want {
		return fmt.Errorf("%w: %s requires dialect %d, got %d", ErrUnsupportedRevision, what, want, got)
	}
	return nil
}
