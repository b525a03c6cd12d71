package record

import "errors"

// ErrMalformed marks a record whose structure is still invalid after the
// back-compat repairs ran. Fatal for that record only; other records in the
// same pass are unaffected.
var ErrMalformed = errors.New("malformed record")
