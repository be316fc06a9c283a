package sms

import "errors"

// ErrNoMatch is returned when no template recognizes the text.
var ErrNoMatch = errors.New("no donation pattern matched")
