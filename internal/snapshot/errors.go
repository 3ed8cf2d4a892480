package snapshot

import "errors"

// ErrMalformedSnapshot covers bad magic, truncated payloads, an LZF
// stream that overruns its declared bounds, or an unrecognized
// value-type byte.
var ErrMalformedSnapshot = errors.New("snapshot: malformed snapshot")

// ErrChecksumMismatch is returned when the trailing CRC64 does not match
// the computed checksum of the preceding bytes. A stored checksum of
// all zeros disables this check entirely.
var ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
