package ext

import (
	"io"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/gm8ext/gex/pkg/wire"
)

// Prototype is the extension manifest: the identifying fields an author
// fills in plus the ordered lists of dependencies and data entries it owns.
type Prototype struct {
	Name         string
	TempFolder   string
	Version      string
	Author       string
	Date         string
	License      string
	Description  string
	HelpFile     string
	Hidden       bool
	Editable     bool // defaults to true
	Dependencies []string
	Entries      []*DataEntry
}

// NewPrototype returns a Prototype with Editable defaulting to true, as the
// format requires.
func NewPrototype(name string) *Prototype {
	return &Prototype{Name: name, Editable: true}
}

// ReadPrototype reads a revision-prefixed prototype entry (dialect 700
// only).
func ReadPrototype(r io.Reader, logger hclog.Logger) (*Prototype, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	dialect, err := readRevision(r)
	if err != nil {
		return nil, err
	}
	if err := requireDialect(dialect, DialectDefault, "prototype"); err != nil {
		return nil, err
	}

	p := &Prototype{}
	if p.Editable, err = wire.ReadBool(r); err != nil {
		return nil, err
	}
	if p.Name, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.TempFolder, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.Version, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.Author, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.Date, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.License, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.Description, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.HelpFile, err = wire.ReadString(r); err != nil {
		return nil, err
	}
	if p.Hidden, err = wire.ReadBool(r); err != nil {
		return nil, err
	}

	depCount, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	p.Dependencies = make([]string, depCount)
	for i := range p.Dependencies {
		if p.Dependencies[i], err = wire.ReadString(r); err != nil {
			return nil, err
		}
	}

	fileCount, err := wire.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	p.Entries = make([]*DataEntry, 0, fileCount)
	for i := int32(0); i < fileCount; i++ {
		de, err := ReadDataEntry(r, logger)
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, de)
	}

	logger.Debug("read prototype", "name", p.Name, "dependencies", len(p.Dependencies), "entries", len(p.Entries))
	return p, nil
}

// WriteTo writes the prototype as a revision-prefixed entry. In optimize
// mode, Editable is always written as false (recoverable: a compiled
// package is never editable) and HelpFile is reduced to just its extension
// (the IDE only shells out on the extension).
func (p *Prototype) WriteTo(w io.Writer, optimize bool) error {
	if err := writeRevision(w, DialectDefault, optimize); err != nil {
		return err
	}
	if err := wire.WriteInt32Opt(w, boolToInt32(p.Editable), optimize, false, 0); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Name); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.TempFolder); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Version); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Author); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Date); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.License); err != nil {
		return err
	}
	if err := wire.WriteString(w, p.Description); err != nil {
		return err
	}

	helpFile := p.HelpFile
	if optimize {
		helpFile = filepath.Ext(p.HelpFile)
	}
	if err := wire.WriteString(w, helpFile); err != nil {
		return err
	}

	if err := wire.WriteBool(w, p.Hidden); err != nil {
		return err
	}

	if err := wire.WriteInt32(w, int32(len(p.Dependencies))); err != nil {
		return err
	}
	for _, dep := range p.Dependencies {
		if err := wire.WriteString(w, dep); err != nil {
			return err
		}
	}

	if err := wire.WriteInt32(w, int32(len(p.Entries))); err != nil {
		return err
	}
	for _, de := range p.Entries {
		if err := de.WriteTo(w, optimize); err != nil {
			return err
		}
	}
	return nil
}

func boolToInt32(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
