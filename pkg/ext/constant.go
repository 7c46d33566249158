package ext

import (
	"io"

	"github.com/gm8ext/gex/pkg/wire"
)

// Constant describes one named constant exposed by a native or script
// library content.
type Constant struct {
	Name   string
	Value  string
	Hidden bool
}

// ReadConstant reads a revision-prefixed constant entry.
func ReadConstant(r io.Reader) (*Constant, error) {
	dialect, err := readRevision(r)
	if err != nil {
		return nil, err
	}
	if err := requireDialect(dialect, DialectDefault, "constant"); err != nil {
		return nil, err
	}

	c := &Constant{}
	if c.Name, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if c.Value, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if c.Hidden, err = wire.ReadBool(r); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteTo writes the constant as a revision-prefixed entry.
func (c *Constant) WriteTo(w io.Writer, optimize bool) error {
	if err := writeRevision(w, DialectDefault, optimize); err != nil {
		return err
	}
	if err := wire.WriteString(w, c.Name); err != nil {
		return err
	}
	if err := wire.WriteString(w, c.Value); err != nil {
		return err
	}
	return wire.WriteBool(w, c.Hidden)
}
