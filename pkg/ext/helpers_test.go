package ext_test

import (
	"io"
	"testing"

	"github.com/gm8ext/gex/pkg/ext"
	"github.com/gm8ext/gex/pkg/wire"
)

func writeRawString(w io.Writer, s string) error { return wire.WriteString(w, s) }
func writeRawInt32(w io.Writer, v int32) error    { return wire.WriteInt32(w, v) }

// writeTestHeader writes a raw data-entry header (name, source, tag) plus an
// empty body. All four content variants share the same empty-body shape
// (init/exit names blank, zero function and constant counts), so one helper
// covers every kind regardless of which Content is ultimately constructed
// from the tag.
func writeTestHeader(t *testing.T, w io.Writer, name, source string, rawKind int32, _ ext.Content) {
	t.Helper()
	if err := writeRawString(w, name); err != nil {
		t.Fatal(err)
	}
	if err := writeRawString(w, source); err != nil {
		t.Fatal(err)
	}
	if err := writeRawInt32(w, rawKind); err != nil {
		t.Fatal(err)
	}
	if err := writeRawString(w, ""); err != nil {
		t.Fatal(err)
	}
	if err := writeRawString(w, ""); err != nil {
		t.Fatal(err)
	}
	if err := writeRawInt32(w, 0); err != nil {
		t.Fatal(err)
	}
	if err := writeRawInt32(w, 0); err != nil {
		t.Fatal(err)
	}
}
