package codec

import "errors"

// ErrShortPayload is returned when a payload is too short for its layout.
var ErrShortPayload = errors.New("codec: short payload")
