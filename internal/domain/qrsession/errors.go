package qrsession

import "errors"

// QR session domain errors
var (
	ErrSessionNotFound     = errors.New("qr session not found")
	ErrSessionUnusable     = errors.New("qr session is expired, inactive or has reached maximum uses")
	ErrSessionTypeMismatch = errors.New("qr session type does not match the requested action")
	ErrLocationRejected    = errors.New("location is outside the allowed radius")
)
