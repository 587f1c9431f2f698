package wire

import "github.com/pkg/errors"

// ErrInvalidFrame is the base error for any malformed frame: bad tag
// syntax, a prefix or tag section with nothing after it, a missing verb,
// or too many parameters (spec.md §4.A, §7 "InvalidFrame").
var ErrInvalidFrame = errors.New("invalid frame")

// ErrNeedMoreData is returned by Decoder.Next when the buffered bytes do
// not yet contain a complete frame. It is not a protocol error: the caller
// should read more bytes and retry.
var ErrNeedMoreData = errors.New("need more data")

// ErrLineTooLong is returned when a line (tags included) exceeds the
// configured maximum. The decoder has already discarded the offending
// bytes up to the next line terminator by the time this is returned, so
// the caller may continue decoding afterward.
var ErrLineTooLong = errors.New("line exceeds maximum length")
