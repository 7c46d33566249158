package ext

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/gm8ext/gex/pkg/wire"
)

// ContentKind tags the four concrete payload-descriptor flavors a
// DataEntry can carry.
type ContentKind int32

const (
	KindNativeLibrary ContentKind = 1
	KindScriptLibrary ContentKind = 2
	KindBinaryPlugin  ContentKind = 3
	KindSimpleBinary  ContentKind = 4
)

// Content is the shared surface of the four payload-descriptor variants.
// Variant selection on read is by the tag following a data-entry header;
// on write, Kind supplies that tag.
type Content interface {
	Kind() ContentKind
	Entry() *DataEntry
	setEntry(*DataEntry)
	readBody(r io.Reader, logger hclog.Logger) error
	writeBody(w io.Writer, optimize bool) error
}

// coerceContentKind maps an on-disk tag to a ContentKind, applying the
// GM4HTML5 quirks documented in the format: tags 0 and 5 are native
// library, tag 6 is simple binary.
func coerceContentKind(raw int32) (ContentKind, error) {
	switch raw {
	case 0, 5:
		return KindNativeLibrary, nil
	case 6:
		return KindSimpleBinary, nil
	case int32(KindNativeLibrary), int32(KindScriptLibrary), int32(KindBinaryPlugin), int32(KindSimpleBinary):
		return ContentKind(raw), nil
	default:
		return 0, fmt.Errorf("%w: tag %d", ErrUnknownContentKind, raw)
	}
}

func newContentForKind(kind ContentKind) (Content, error) {
	switch kind {
	case KindNativeLibrary:
		return &NativeLibraryContent{}, nil
	case KindScriptLibrary:
		return &ScriptLibraryContent{}, nil
	case KindBinaryPlugin:
		return &BinaryPluginContent{}, nil
	case KindSimpleBinary:
		return &SimpleBinaryContent{}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnknownContentKind, kind)
	}
}

// NativeLibraryContent describes a native (DLL-backed) library: an
// init/exit function pair plus tables of exported native functions and
// constants.
type NativeLibraryContent struct {
	entry     *DataEntry
	InitFunc  string
	ExitFunc  string
	Functions []*NativeFunction
	Constants []*Constant
}

func (c *NativeLibraryContent) Kind() ContentKind     { return KindNativeLibrary }
func (c *NativeLibraryContent) Entry() *DataEntry     { return c.entry }
func (c *NativeLibraryContent) setEntry(d *DataEntry) { c.entry = d }

func (c *NativeLibraryContent) readBody(r io.Reader, logger hclog.Logger) error {
	var err error
	if c.InitFunc, err = wire.ReadString(r); err != nil {
		return err
	}
	if c.ExitFunc, err = wire.ReadString(r); err != nil {
		return err
	}

	funcCount, err := wire.ReadInt32(r)
	if err != nil {
		return err
	}
	c.Functions = make([]*NativeFunction, 0, funcCount)
	for i := int32(0); i < funcCount; i++ {
		f, err := ReadNativeFunction(r)
		if err != nil {
			return err
		}
		c.Functions = append(c.Functions, f)
	}

	constCount, err := wire.ReadInt32(r)
	if err != nil {
		return err
	}
	c.Constants = make([]*Constant, 0, constCount)
	for i := int32(0); i < constCount; i++ {
		cst, err := ReadConstant(r)
		if err != nil {
			return err
		}
		c.Constants = append(c.Constants, cst)
	}

	logger.Trace("read native library content", "functions", len(c.Functions), "constants", len(c.Constants))
	return nil
}

func (c *NativeLibraryContent) writeBody(w io.Writer, optimize bool) error {
	if err := wire.WriteString(w, c.InitFunc); err != nil {
		return err
	}
	if err := wire.WriteString(w, c.ExitFunc); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, int32(len(c.Functions))); err != nil {
		return err
	}
	for _, f := range c.Functions {
		if err := f.WriteTo(w, optimize); err != nil {
			return err
		}
	}
	if err := wire.WriteInt32(w, int32(len(c.Constants))); err != nil {
		return err
	}
	for _, cst := range c.Constants {
		if err := cst.WriteTo(w, optimize); err != nil {
			return err
		}
	}
	return nil
}

// ScriptLibraryContent has the same shape as NativeLibraryContent but its
// function descriptors are the script variant.
type ScriptLibraryContent struct {
	entry     *DataEntry
	InitFunc  string
	ExitFunc  string
	Functions []*ScriptFunction
	Constants []*Constant
}

func (c *ScriptLibraryContent) Kind() ContentKind     { return KindScriptLibrary }
func (c *ScriptLibraryContent) Entry() *DataEntry     { return c.entry }
func (c *ScriptLibraryContent) setEntry(d *DataEntry) { c.entry = d }

func (c *ScriptLibraryContent) readBody(r io.Reader, logger hclog.Logger) error {
	var err error
	if c.InitFunc, err = wire.ReadString(r); err != nil {
		return err
	}
	if c.ExitFunc, err = wire.ReadString(r); err != nil {
		return err
	}

	funcCount, err := wire.ReadInt32(r)
	if err != nil {
		return err
	}
	c.Functions = make([]*ScriptFunction, 0, funcCount)
	for i := int32(0); i < funcCount; i++ {
		f, err := ReadScriptFunction(r, logger)
		if err != nil {
			return err
		}
		c.Functions = append(c.Functions, f)
	}

	constCount, err := wire.ReadInt32(r)
	if err != nil {
		return err
	}
	c.Constants = make([]*Constant, 0, constCount)
	for i := int32(0); i < constCount; i++ {
		cst, err := ReadConstant(r)
		if err != nil {
			return err
		}
		c.Constants = append(c.Constants, cst)
	}

	logger.Trace("read script library content", "functions", len(c.Functions), "constants", len(c.Constants))
	return nil
}

func (c *ScriptLibraryContent) writeBody(w io.Writer, optimize bool) error {
	if err := wire.WriteString(w, c.InitFunc); err != nil {
		return err
	}
	if err := wire.WriteString(w, c.ExitFunc); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, int32(len(c.Functions))); err != nil {
		return err
	}
	for _, f := range c.Functions {
		if err := f.WriteTo(w, optimize); err != nil {
			return err
		}
	}
	if err := wire.WriteInt32(w, int32(len(c.Constants))); err != nil {
		return err
	}
	for _, cst := range c.Constants {
		if err := cst.WriteTo(w, optimize); err != nil {
			return err
		}
	}
	return nil
}

// readZeroedMetadataBody reads the four fixed fields shared by the two
// binary content variants and asserts they are all zero, as the format
// requires for anything that is not a library.
func readZeroedMetadataBody(r io.Reader) error {
	initFn, err := wire.ReadString(r)
	if err != nil {
		return err
	}
	exitFn, err := wire.ReadString(r)
	if err != nil {
		return err
	}
	funcCount, err := wire.ReadInt32(r)
	if err != nil {
		return err
	}
	constCount, err := wire.ReadInt32(r)
	if err != nil {
		return err
	}
	if initFn != "" || exitFn != "" || funcCount != 0 || constCount != 0 {
		return ErrAssertionFailure
	}
	return nil
}

func writeZeroedMetadataBody(w io.Writer) error {
	if err := wire.WriteString(w, ""); err != nil {
		return err
	}
	if err := wire.WriteString(w, ""); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, 0); err != nil {
		return err
	}
	return wire.WriteInt32(w, 0)
}

// BinaryPluginContent carries no metadata of its own; its data-entry's
// source/name fully describe it.
type BinaryPluginContent struct {
	entry *DataEntry
}

func (c *BinaryPluginContent) Kind() ContentKind                          { return KindBinaryPlugin }
func (c *BinaryPluginContent) Entry() *DataEntry                          { return c.entry }
func (c *BinaryPluginContent) setEntry(d *DataEntry)                      { c.entry = d }
func (c *BinaryPluginContent) readBody(r io.Reader, _ hclog.Logger) error { return readZeroedMetadataBody(r) }
func (c *BinaryPluginContent) writeBody(w io.Writer, _ bool) error        { return writeZeroedMetadataBody(w) }

// SimpleBinaryContent carries no metadata of its own.
type SimpleBinaryContent struct {
	entry *DataEntry
}

func (c *SimpleBinaryContent) Kind() ContentKind                          { return KindSimpleBinary }
func (c *SimpleBinaryContent) Entry() *DataEntry                          { return c.entry }
func (c *SimpleBinaryContent) setEntry(d *DataEntry)                     { c.entry = d }
func (c *SimpleBinaryContent) readBody(r io.Reader, _ hclog.Logger) error { return readZeroedMetadataBody(r) }
func (c *SimpleBinaryContent) writeBody(w io.Writer, _ bool) error       { return writeZeroedMetadataBody(w) }
