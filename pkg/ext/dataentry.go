package ext

import (
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/gm8ext/gex/pkg/wire"
)

// DataEntry owns exactly one Content and carries the name/source-hint
// metadata the file container uses to resolve payload bytes. A DataEntry is
// not itself a revision-prefixed entry: it appears inline inside a
// Prototype's entry list.
type DataEntry struct {
	Name    string
	Source  string // typically a path or URL; consumed by the payload callback
	Content Content
}

// NewDataEntry constructs a DataEntry and wires up the bidirectional
// back-reference between it and its Content as a single atomic unit, so the
// pointer can never dangle.
func NewDataEntry(name, source string, content Content) *DataEntry {
	d := &DataEntry{Name: name, Source: source, Content: content}
	content.setEntry(d)
	return d
}

// ReadDataEntry reads a data-entry's name/source/kind header plus its
// content body, coercing legacy content tags as the format requires.
func ReadDataEntry(r io.Reader, logger hclog.Logger) (*DataEntry, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	name, err := wire.ReadString(r)
	if err != nil {
		return nil, err
	}
	source, err := wire.ReadString(r)
	if err != nil {
		return nil, err
	}
	rawKind, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}

	kind, err := coerceContentKind(rawKind)
	if err != nil {
		return nil, err
	}
	content, err := newContentForKind(kind)
	if err != nil {
		return nil, err
	}
	if err := content.readBody(r, logger); err != nil {
		return nil, err
	}

	return NewDataEntry(name, source, content), nil
}

// WriteTo writes the data entry's header followed by its content body. In
// optimize mode, Source is always elided to "" since it is recoverable from
// the payload callback's own bookkeeping rather than the metadata tree.
func (d *DataEntry) WriteTo(w io.Writer, optimize bool) error {
	if err := wire.WriteString(w, d.Name); err != nil {
		return err
	}
	if err := wire.WriteStringOpt(w, d.Source, optimize, false, ""); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, int32(d.Content.Kind())); err != nil {
		return err
	}
	return d.Content.writeBody(w, optimize)
}
