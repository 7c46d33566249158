package ext

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/klauspost/compress/zlib"

	"github.com/gm8ext/gex/pkg/krypt"
	"github.com/gm8ext/gex/pkg/wire"
)

// GEXSignature is the raw, unencrypted magic value every GEX file begins
// with, written before the krypt stream starts.
const GEXSignature int32 = 1234321

// Kind identifies which of the three on-disk container formats a file is,
// as reported by Sniff.
type Kind int

const (
	KindUnknownFile Kind = iota
	KindGEXFile
	KindGEDFile
	KindDATFile
)

// File is the top-level codec for the three extension container formats.
// It owns the compression level used when writing payload blocks; callers
// that need deterministic output across runs should hold CompressionLevel
// fixed rather than relying on the zlib default.
type File struct {
	Logger           hclog.Logger
	CompressionLevel int
}

// NewFile returns a File ready to load and save with the standard zlib
// compression level. A nil logger is replaced with a no-op logger.
func NewFile(logger hclog.Logger) *File {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &File{Logger: logger, CompressionLevel: zlib.DefaultCompression}
}

// Sniff peeks at the first four bytes available from r (without consuming
// more than that) and reports the most likely container kind. GEX is
// unambiguous: its leading signature is reserved for that purpose. GED/GMP
// and DAT are not self-describing at the byte level in the same way, since
// a GED's leading int is just its prototype's revision field (700) and a
// DAT's is an arbitrary key seed; callers should treat a non-GEX result as
// advisory and prefer filename-suffix dispatch when one is available.
func Sniff(r *bufio.Reader) (Kind, error) {
	head, err := r.Peek(4)
	if err != nil {
		return KindUnknownFile, err
	}
	v := int32(binary.LittleEndian.Uint32(head))
	if v == GEXSignature {
		return KindGEXFile, nil
	}
	if v == int32(DialectDefault) || v == -int32(DialectDefault) {
		return KindGEDFile, nil
	}
	return KindDATFile, nil
}

// LoadGED reads a GED/GMP file: a bare revision-prefixed Prototype, no
// cipher and no payload region.
func (f *File) LoadGED(r io.Reader) (*Prototype, error) {
	return ReadPrototype(r, f.Logger)
}

// SaveGED writes a GED/GMP file.
func (f *File) SaveGED(w io.Writer, p *Prototype, optimize bool) error {
	return p.WriteTo(w, optimize)
}

// LoadGEX reads a full GEX package: the raw signature, the krypt-wrapped
// package entry (whose own key seed re-keys the stream in place), and the
// payload region that follows it on the same stream. supply is invoked once
// per payload slot, in the fixed help-file-then-entries order; a rewritten
// source hint is folded back into the returned Package's Prototype.
func (f *File) LoadGEX(r io.ReadWriteSeeker, supply LoadSinkFunc) (*Package, error) {
	sig, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if sig != GEXSignature {
		return nil, ErrInvalidSignature
	}

	ks, err := krypt.Ensure(nil, r, krypt.Decode, f.Logger)
	if err != nil {
		return nil, err
	}

	pkg, err := ReadPackage(ks, f.Logger)
	if err != nil {
		return nil, err
	}

	if err := f.distributePayload(ks, pkg.Prototype, supply); err != nil {
		return nil, err
	}
	return pkg, nil
}

// SaveGEX writes a full GEX package: the raw signature, the krypt-wrapped
// package entry, and the payload region. supply is invoked once per payload
// slot in the same order LoadGEX uses.
func (f *File) SaveGEX(w io.ReadWriteSeeker, pkg *Package, optimize bool, supply SaveSourceFunc) error {
	if err := wire.WriteInt32(w, GEXSignature); err != nil {
		return err
	}

	ks, err := krypt.Ensure(nil, w, krypt.Encode, f.Logger)
	if err != nil {
		return err
	}

	if err := pkg.WriteTo(ks, optimize, f.Logger); err != nil {
		return err
	}

	return f.collectPayload(ks, pkg.Prototype, supply)
}

// LoadDAT reads a DAT container: a bare key seed through an identity krypt
// stream, re-keyed in place, followed by a payload region whose slot count
// and naming are supplied by the caller since a DAT carries no metadata
// tree of its own to walk.
func (f *File) LoadDAT(r io.ReadWriteSeeker, names []string, supply LoadSinkFunc) (int32, error) {
	ks, err := krypt.Ensure(nil, r, krypt.Decode, f.Logger)
	if err != nil {
		return 0, err
	}

	seed, err := wire.ReadInt32(ks)
	if err != nil {
		return 0, err
	}
	ks.InitState(seed, false)

	for _, name := range names {
		dst, _, ok, err := supply(name, "")
		if err != nil {
			return 0, err
		}
		var w io.Writer
		if ok {
			w = dst
		}
		if err := readPayloadBlock(ks, w); err != nil {
			return 0, err
		}
		closeIfCloser(dst)
	}
	return seed, nil
}

// SaveDAT writes a DAT container with the given key seed and named payload
// slots.
func (f *File) SaveDAT(w io.ReadWriteSeeker, keySeed int32, names []string, supply SaveSourceFunc) error {
	ks, err := krypt.Ensure(nil, w, krypt.Encode, f.Logger)
	if err != nil {
		return err
	}

	if err := wire.WriteInt32(ks, keySeed); err != nil {
		return err
	}
	ks.InitState(keySeed, false)

	for _, name := range names {
		src, _, ok, err := supply(name, "")
		if err != nil {
			return err
		}
		var rd io.Reader
		if ok {
			rd = src
		}
		if err := writePayloadBlock(ks, rd, f.CompressionLevel); err != nil {
			return err
		}
		closeIfCloser(src)
	}
	return nil
}

func (f *File) distributePayload(ks *krypt.Stream, p *Prototype, supply LoadSinkFunc) error {
	for _, it := range walkPayloadOrder(p) {
		dst, rewritten, ok, err := supply(it.name, it.sourceHint)
		if err != nil {
			return err
		}
		var w io.Writer
		if ok {
			w = dst
		}
		if err := readPayloadBlock(ks, w); err != nil {
			return err
		}
		if ok && rewritten != "" {
			if it.isHelp {
				p.HelpFile = rewritten
			} else {
				it.entry.Source = rewritten
			}
		}
		closeIfCloser(dst)
	}
	return nil
}

func (f *File) collectPayload(ks *krypt.Stream, p *Prototype, supply SaveSourceFunc) error {
	for _, it := range walkPayloadOrder(p) {
		src, rewritten, ok, err := supply(it.name, it.sourceHint)
		if err != nil {
			return err
		}
		if ok && rewritten != "" {
			if it.isHelp {
				p.HelpFile = rewritten
			} else {
				it.entry.Source = rewritten
			}
		}
		var rd io.Reader
		if ok {
			rd = src
		}
		if err := writePayloadBlock(ks, rd, f.CompressionLevel); err != nil {
			return err
		}
		closeIfCloser(src)
	}
	return nil
}

func closeIfCloser(v interface{}) {
	if v == nil {
		return
	}
	if c, ok := v.(io.Closer); ok {
		c.Close()
	}
}

// readPayloadBlock reads one length-prefixed compressed payload block from
// ks. A zero length is the format's encoding for an empty slot, whether
// that emptiness came from genuinely empty content or a write-side skip;
// either way nothing is written to sink and no zlib reader is constructed.
// When sink is nil the slot is being skipped: the compressed bytes are
// seeked past on ks rather than decompressed.
func readPayloadBlock(ks *krypt.Stream, sink io.Writer) error {
	packedLen, err := wire.ReadInt32(ks)
	if err != nil {
		return err
	}
	if packedLen == 0 {
		return nil
	}
	if sink == nil {
		_, err := ks.Seek(int64(packedLen), io.SeekCurrent)
		return err
	}

	buf := make([]byte, packedLen)
	if _, err := io.ReadFull(ks, buf); err != nil {
		return err
	}
	zr, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer zr.Close()
	_, err = io.Copy(sink, zr)
	return err
}

// writePayloadBlock zlib-compresses src in full before writing its
// length-prefixed block, since the block's length prefix must precede its
// bytes on the wire. A nil src (a skipped slot) is written as a zero-length
// block without ever invoking zlib.
func writePayloadBlock(ks *krypt.Stream, src io.Reader, level int) error {
	if src == nil {
		return wire.WriteInt32(ks, 0)
	}

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return err
	}
	if _, err := io.Copy(zw, src); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	if err := wire.WriteInt32(ks, int32(buf.Len())); err != nil {
		return err
	}
	_, err = ks.Write(buf.Bytes())
	return err
}
