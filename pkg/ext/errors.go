package ext

import (
	"errors"

	"github.com/gm8ext/gex/pkg/krypt"
)

// Error kinds surfaced by the codec, per the error handling design: every
// kind below is fatal to the current load/save call unless noted.
var (
	// ErrUnsupportedRevision is returned when an entry's revision field is
	// neither 700 nor 701, or the entry variant reading it does not support
	// that dialect.
	ErrUnsupportedRevision = errors.New("ext: unsupported entry revision")

	// ErrCipherInvariantViolation is returned when a crypto-stream handoff
	// expected an already-identical cipher and found it re-keyed instead.
	ErrCipherInvariantViolation = errors.New("ext: cipher was not identical at handoff")

	// ErrInvalidSignature is returned when a GEX file's leading signature
	// does not match the expected magic value.
	ErrInvalidSignature = errors.New("ext: invalid GEX signature")

	// ErrAssertionFailure is returned when a binary content's on-disk
	// metadata region (init/exit function names, function/constant counts)
	// is not all-zero, as it must be for plugin and simple-binary content.
	ErrAssertionFailure = errors.New("ext: non-zero metadata on binary content")

	// ErrInvalidSeek is re-exported for convenience; see pkg/krypt.
	ErrInvalidSeek = krypt.ErrInvalidSeek

	// ErrUnknownContentKind is returned for a data-entry content tag this
	// codec does not recognize and cannot coerce.
	ErrUnknownContentKind = errors.New("ext: unknown content kind")
)
