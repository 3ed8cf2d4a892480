package resp

import "errors"

// ErrMalformedFrame is returned when the buffer does not contain a
// well-formed RESP message: an unknown prefix, an unparseable length, a
// missing CRLF where one is required, or a buffer that ends mid-frame.
var ErrMalformedFrame = errors.New("resp: malformed frame")
