package ext_test

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/gm8ext/gex/pkg/ext"
)

func TestNativeFunctionRoundTrip(t *testing.T) {
	f := &ext.NativeFunction{
		Name:       "gml_CallFunc",
		Symbol:     "CallFunc",
		HelpLine:   "CallFunc(arg1, arg2)",
		Hidden:     false,
		ArgCount:   2,
		InvokeType: ext.InvokeStdcall,
		ResultType: ext.ValueReal,
	}
	f.ArgTypes[0] = ext.ValueReal
	f.ArgTypes[1] = ext.ValueString

	var buf bytes.Buffer
	require.NoError(t, f.WriteTo(&buf, false))

	got, err := ext.ReadNativeFunction(&buf)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestNativeFunctionOptimizeElidesSymbolAndHelpLine(t *testing.T) {
	f := &ext.NativeFunction{
		Name:       "gml_CallFunc",
		Symbol:     "gml_CallFunc", // equals Name: elidable
		HelpLine:   "irrelevant when hidden",
		Hidden:     true,
		InvokeType: ext.InvokeCdecl,
		ResultType: ext.ValueReal,
	}

	var buf bytes.Buffer
	require.NoError(t, f.WriteTo(&buf, true))

	got, err := ext.ReadNativeFunction(&buf)
	require.NoError(t, err)
	require.Equal(t, "", got.Symbol)
	require.Equal(t, "", got.HelpLine)
	require.True(t, got.Hidden)
}

func TestScriptFunctionRoundTripAnyArity(t *testing.T) {
	f := &ext.ScriptFunction{
		Name:     "scr_main",
		Symbol:   "scr_main",
		HelpLine: "scr_main(...)",
		AnyArity: true,
	}

	var buf bytes.Buffer
	require.NoError(t, f.WriteTo(&buf, false))

	got, err := ext.ReadScriptFunction(&buf, hclog.NewNullLogger())
	require.NoError(t, err)
	require.True(t, got.AnyArity)
	require.Equal(t, 0, got.ArgCount)
	require.Equal(t, f.Name, got.Name)
}

func TestScriptFunctionFixedArity(t *testing.T) {
	f := &ext.ScriptFunction{Name: "scr_add", ArgCount: 2}

	var buf bytes.Buffer
	require.NoError(t, f.WriteTo(&buf, false))

	got, err := ext.ReadScriptFunction(&buf, hclog.NewNullLogger())
	require.NoError(t, err)
	require.False(t, got.AnyArity)
	require.Equal(t, 2, got.ArgCount)
}

func TestScriptFunctionTolerantOfUnexpectedInvokeType(t *testing.T) {
	f := &ext.ScriptFunction{Name: "scr_legacy"}
	var buf bytes.Buffer
	require.NoError(t, f.WriteTo(&buf, false))

	// Simulate a bundled extension that wrote an invoke-type other than the
	// documented filler value: patch the byte right after the revision
	// (4) + name length (4) + name bytes + symbol length (4) fields.
	raw := buf.Bytes()
	offset := 4 + 4 + len(f.Name) + 4 // revision, name-len, name, symbol-len (empty symbol)
	raw[offset] = 0x09

	got, err := ext.ReadScriptFunction(bytes.NewReader(raw), hclog.NewNullLogger())
	require.NoError(t, err)
	require.Equal(t, f.Name, got.Name)
}

func TestConstantRoundTrip(t *testing.T) {
	c := &ext.Constant{Name: "PI_ISH", Value: "3.14", Hidden: true}

	var buf bytes.Buffer
	require.NoError(t, c.WriteTo(&buf, false))

	got, err := ext.ReadConstant(&buf)
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestPrototypeRoundTrip(t *testing.T) {
	p := ext.NewPrototype("my_extension")
	p.TempFolder = "temp042"
	p.Version = "1.0"
	p.Author = "author"
	p.Date = "2026-01-01"
	p.License = "MIT"
	p.Description = "does things"
	p.HelpFile = "help.chm"
	p.Hidden = false
	p.Dependencies = []string{"dep1.dll"}

	native := &ext.NativeLibraryContent{InitFunc: "init", ExitFunc: "exit"}
	de := ext.NewDataEntry("my_extension.dll", "C:/src/my_extension.dll", native)
	p.Entries = append(p.Entries, de)

	var buf bytes.Buffer
	require.NoError(t, p.WriteTo(&buf, false))

	got, err := ext.ReadPrototype(&buf, hclog.NewNullLogger())
	require.NoError(t, err)
	require.Equal(t, p.Name, got.Name)
	require.Equal(t, p.Dependencies, got.Dependencies)
	require.Len(t, got.Entries, 1)
	require.Equal(t, ext.KindNativeLibrary, got.Entries[0].Content.Kind())
	require.Same(t, got.Entries[0], got.Entries[0].Content.Entry())
}

func TestPrototypeOptimizeElidesEditableAndHelpFileExtension(t *testing.T) {
	p := ext.NewPrototype("ext")
	p.HelpFile = "docs/manual.chm"

	var buf bytes.Buffer
	require.NoError(t, p.WriteTo(&buf, true))

	got, err := ext.ReadPrototype(&buf, hclog.NewNullLogger())
	require.NoError(t, err)
	require.False(t, got.Editable)
	require.Equal(t, ".chm", got.HelpFile)
}

func TestDataEntryOptimizeElidesSource(t *testing.T) {
	de := ext.NewDataEntry("plugin.dll", "/tmp/plugin.dll", &ext.BinaryPluginContent{})

	var buf bytes.Buffer
	require.NoError(t, de.WriteTo(&buf, true))

	got, err := ext.ReadDataEntry(&buf, hclog.NewNullLogger())
	require.NoError(t, err)
	require.Equal(t, "", got.Source)
	require.Equal(t, "plugin.dll", got.Name)
}

func TestCoerceContentKindLegacyTags(t *testing.T) {
	cases := []struct {
		raw  int32
		want ext.ContentKind
	}{
		{0, ext.KindNativeLibrary},
		{5, ext.KindNativeLibrary},
		{6, ext.KindSimpleBinary},
		{int32(ext.KindScriptLibrary), ext.KindScriptLibrary},
		{int32(ext.KindBinaryPlugin), ext.KindBinaryPlugin},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		writeTestHeader(t, &buf, "x", "", c.raw, nil)

		got, err := ext.ReadDataEntry(&buf, hclog.NewNullLogger())
		require.NoError(t, err)
		require.Equal(t, c.want, got.Content.Kind())
	}
}

func TestUnknownContentKindRejected(t *testing.T) {
	var buf bytes.Buffer
	writeTestHeader(t, &buf, "x", "", 99, &ext.BinaryPluginContent{})

	_, err := ext.ReadDataEntry(&buf, hclog.NewNullLogger())
	require.ErrorIs(t, err, ext.ErrUnknownContentKind)
}

func TestBinaryContentRejectsNonZeroMetadata(t *testing.T) {
	var buf bytes.Buffer
	// name, source, tag=KindSimpleBinary, then a non-empty init func where
	// the format requires all-zero metadata.
	require.NoError(t, writeRawString(&buf, "x"))
	require.NoError(t, writeRawString(&buf, ""))
	require.NoError(t, writeRawInt32(&buf, int32(ext.KindSimpleBinary)))
	require.NoError(t, writeRawString(&buf, "unexpected_init"))
	require.NoError(t, writeRawString(&buf, ""))
	require.NoError(t, writeRawInt32(&buf, 0))
	require.NoError(t, writeRawInt32(&buf, 0))

	_, err := ext.ReadDataEntry(&buf, hclog.NewNullLogger())
	require.ErrorIs(t, err, ext.ErrAssertionFailure)
}
