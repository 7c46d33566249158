package ext

import (
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/gm8ext/gex/pkg/wire"
)

// Calling convention and value-type constants for native functions.
const (
	InvokeStdcall int32 = 11
	InvokeCdecl   int32 = 12

	ValueString int32 = 1
	ValueReal   int32 = 2
)

// maxArgSlots is the fixed argument-type array width on the wire: only the
// first 16 slots are meaningful, the 17th is written but unused.
const maxArgSlots = 17

// scriptFunctionFiller is the constant value the IDE writes into a script
// function's invoke-type, argument-type slots and result type; none of
// these carry information for script functions, so readers ignore them.
const scriptFunctionFiller int32 = 2

// NativeFunction describes one exported function of a native library
// content, as specified by the dialect-700 "Function (native)" layout.
type NativeFunction struct {
	Name       string
	Symbol     string // empty means "use Name"
	HelpLine   string
	Hidden     bool
	ArgCount   int
	InvokeType int32
	ResultType int32
	ArgTypes   [maxArgSlots]int32
}

// ReadNativeFunction reads a revision-prefixed native function entry.
func ReadNativeFunction(r io.Reader) (*NativeFunction, error) {
	dialect, err := readRevision(r)
	if err != nil {
		return nil, err
	}
	if err := requireDialect(dialect, DialectDefault, "native function"); err != nil {
		return nil, err
	}

	f := &NativeFunction{}
	if f.Name, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if f.Symbol, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if f.InvokeType, err = wire.ReadInt32(r); err != nil {
		return nil, err
	}
	if f.HelpLine, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if f.Hidden, err = wire.ReadBool(r); err != nil {
		return nil, err
	}
	argCount, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	f.ArgCount = int(argCount)
	for i := range f.ArgTypes {
		if f.ArgTypes[i], err = wire.ReadInt32(r); err != nil {
			return nil, err
		}
	}
	if f.ResultType, err = wire.ReadInt32(r); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteTo writes the function as a revision-prefixed entry. In optimize
// mode, Symbol is elided to "" when it equals Name, and HelpLine is elided
// to "" when the function is hidden.
func (f *NativeFunction) WriteTo(w io.Writer, optimize bool) error {
	if err := writeRevision(w, DialectDefault, optimize); err != nil {
		return err
	}
	if err := wire.WriteString(w, f.Name); err != nil {
		return err
	}
	if err := wire.WriteStringOpt(w, f.Symbol, optimize, f.Symbol != f.Name, ""); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, f.InvokeType); err != nil {
		return err
	}
	if err := wire.WriteStringOpt(w, f.HelpLine, optimize, !f.Hidden, ""); err != nil {
		return err
	}
	if err := wire.WriteBool(w, f.Hidden); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, int32(f.ArgCount)); err != nil {
		return err
	}
	for _, t := range f.ArgTypes {
		if err := wire.WriteInt32(w, t); err != nil {
			return err
		}
	}
	return wire.WriteInt32(w, f.ResultType)
}

// ScriptFunction describes one exported function of a script library
// content. Its wire layout mirrors the native shape but the invoke-type,
// argument-type array and result type are write-only placeholders: only
// the argument count (or its -1 "any-arity" sentinel) carries information.
type ScriptFunction struct {
	Name     string
	Symbol   string
	HelpLine string
	Hidden   bool
	ArgCount int
	AnyArity bool
}

// ReadScriptFunction reads a revision-prefixed script function entry. A
// wire argument count of -1 maps to AnyArity with ArgCount reset to 0. The
// invoke-type field is tolerated for any value: a GM8 bundled extension is
// known to write a value other than 2 here, and the original implementation
// carries this as a disabled assertion rather than a hard failure.
func ReadScriptFunction(r io.Reader, logger hclog.Logger) (*ScriptFunction, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	dialect, err := readRevision(r)
	if err != nil {
		return nil, err
	}
	if err := requireDialect(dialect, DialectDefault, "script function"); err != nil {
		return nil, err
	}

	f := &ScriptFunction{}
	if f.Name, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if f.Symbol, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	invokeType, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if invokeType != scriptFunctionFiller {
		logger.Warn("script function invoke-type is not the expected value", "name", f.Name, "invokeType", invokeType)
	}
	if f.HelpLine, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if f.Hidden, err = wire.ReadBool(r); err != nil {
		return nil, err
	}
	argCount, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if argCount == -1 {
		f.AnyArity = true
		f.ArgCount = 0
	} else {
		f.ArgCount = int(argCount)
	}
	for i := 0; i < maxArgSlots; i++ {
		if _, err := wire.ReadInt32(r); err != nil {
			return nil, err
		}
	}
	if _, err := wire.ReadInt32(r); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteTo writes the script function as a revision-prefixed entry. The
// invoke-type, argument-type slots and result type are always written as 2
// regardless of what was read, per the format's write-side convention.
func (f *ScriptFunction) WriteTo(w io.Writer, optimize bool) error {
	if err := writeRevision(w, DialectDefault, optimize); err != nil {
		return err
	}
	if err := wire.WriteString(w, f.Name); err != nil {
		return err
	}
	if err := wire.WriteStringOpt(w, f.Symbol, optimize, f.Symbol != f.Name, ""); err != nil {
		return err
	}
	if err := wire.WriteInt32(w, scriptFunctionFiller); err != nil {
		return err
	}
	if err := wire.WriteStringOpt(w, f.HelpLine, optimize, !f.Hidden, ""); err != nil {
		return err
	}
	if err := wire.WriteBool(w, f.Hidden); err != nil {
		return err
	}
	argCount := int32(f.ArgCount)
	if f.AnyArity {
		argCount = -1
	}
	if err := wire.WriteInt32(w, argCount); err != nil {
		return err
	}
	for i := 0; i < maxArgSlots; i++ {
		if err := wire.WriteInt32(w, scriptFunctionFiller); err != nil {
			return err
		}
	}
	return wire.WriteInt32(w, scriptFunctionFiller)
}
