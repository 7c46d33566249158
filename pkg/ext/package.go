package ext

import (
	"github.com/hashicorp/go-hclog"

	"github.com/gm8ext/gex/pkg/krypt"
	"github.com/gm8ext/gex/pkg/wire"
)

// Package is the GEX root entry: a key seed plus the single Prototype it
// encrypts. It is the only entry type that supports DialectGEX.
type Package struct {
	Prototype *Prototype
	KeySeed   int32
}

// ReadPackage reads a revision-prefixed package entry (dialect 701 only).
// ks must already be an identity-state krypt.Stream: the key seed is read
// through it while it is still a pass-through, then ks is re-keyed in
// place for the nested prototype and everything that follows it on the
// same stream (notably the GEX payload region).
func ReadPackage(ks *krypt.Stream, logger hclog.Logger) (*Package, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	dialect, err := readRevision(ks)
	if err != nil {
		return nil, err
	}
	if err := requireDialect(dialect, DialectGEX, "package"); err != nil {
		return nil, err
	}
	if _, err := krypt.Ensure(ks, nil, krypt.Encode, logger); err != nil {
		return nil, ErrCipherInvariantViolation
	}

	seed, err := wire.ReadInt32(ks)
	if err != nil {
		return nil, err
	}
	ks.InitState(seed, false)
	logger.Debug("package re-keyed", "seed", seed)

	proto, err := ReadPrototype(ks, logger)
	if err != nil {
		return nil, err
	}

	return &Package{Prototype: proto, KeySeed: seed}, nil
}

// WriteTo writes a revision-prefixed package entry. ks must already be an
// identity-state krypt.Stream; it is re-keyed with p.KeySeed immediately
// after the seed is written, exactly mirroring ReadPackage.
func (p *Package) WriteTo(ks *krypt.Stream, optimize bool, logger hclog.Logger) error {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := writeRevision(ks, DialectGEX, optimize); err != nil {
		return err
	}
	if _, err := krypt.Ensure(ks, nil, krypt.Encode, logger); err != nil {
		return ErrCipherInvariantViolation
	}

	if err := wire.WriteInt32(ks, p.KeySeed); err != nil {
		return err
	}
	ks.InitState(p.KeySeed, false)
	logger.Debug("package re-keyed", "seed", p.KeySeed)

	return p.Prototype.WriteTo(ks, optimize)
}
