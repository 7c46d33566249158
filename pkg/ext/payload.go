package ext

import (
	"io"
	"path/filepath"
)

// SaveSourceFunc supplies the bytes for one payload slot while a GEX or DAT
// is being written. name is the logical filename the container computed for
// this slot (see logicalName); sourceHint is the slot's current source
// string as recorded in the in-memory metadata tree.
//
// Returning ok=false (the skip sentinel) causes the slot to be written as an
// empty compressed block without ever calling src.Read. rewrittenHint, when
// non-empty, replaces the metadata's source field in memory as soon as the
// callback returns; the metadata has already been serialized by then, so
// the rewrite has no effect on the bytes written.
type SaveSourceFunc func(name, sourceHint string) (src io.Reader, rewrittenHint string, ok bool, err error)

// LoadSinkFunc is the load-side counterpart of SaveSourceFunc. Returning
// ok=false skips the slot: the container seeks past its compressed bytes on
// the underlying krypt.Stream without ever constructing a zlib reader.
type LoadSinkFunc func(name, sourceHint string) (dst io.Writer, rewrittenHint string, ok bool, err error)

// walkItem is one position in the fixed, order-significant walk of a
// prototype's payload-bearing fields: the help file (if any) first, then
// each data entry's content in declaration order. This order is exactly the
// order payload blocks appear in the payload region, on both save and load.
type walkItem struct {
	name       string
	sourceHint string
	isHelp     bool
	entry      *DataEntry
}

// logicalName derives the filename a payload callback should see from a
// source hint, falling back to a caller-supplied name when the hint is
// empty or has no usable basename (notably, optimize mode always empties a
// data entry's source, and that is expected to hit this fallback).
func logicalName(source, fallback string) string {
	if source == "" {
		return fallback
	}
	base := filepath.Base(source)
	if base == "." || base == string(filepath.Separator) {
		return fallback
	}
	return base
}

// walkPayloadOrder computes the ordered list of payload slots a prototype
// describes. It is shared between save and load so that both sides agree on
// how many blocks the payload region holds and what each one is called.
func walkPayloadOrder(p *Prototype) []walkItem {
	var items []walkItem
	if p.HelpFile != "" {
		items = append(items, walkItem{
			name:       logicalName(p.HelpFile, p.TempFolder),
			sourceHint: p.HelpFile,
			isHelp:     true,
		})
	}
	for _, de := range p.Entries {
		items = append(items, walkItem{
			name:       logicalName(de.Source, de.Name),
			sourceHint: de.Source,
			entry:      de,
		})
	}
	return items
}
