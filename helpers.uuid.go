package main

import (
	"strings"

	"github.com/gofrs/uuid"
)

// Request ids read "r:<uuid v4>". The books client stamps a fresh one on each
// call into the X-Request-ID header. The stub api keeps that id when it is
// valid and only generates its own otherwise, so one id follows a call through
// the client and the server logs and comes back in the response header.
const (
	RequestIDPrefix string = "r"
	RequestIDHeader string = "X-Request-ID"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler generates and checks prefixed ids.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id, prefix string) bool
}

// IDsHandler implements UIDHandler with random uuids.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate returns prefix:<uuid v4>.
func (idh *IDsHandler) Generate(prefix string) string {
	id, err := uuid.NewV4()
	if err != nil {
		id = uuid.Must(uuid.NewV7())
	}
	return prefix + ":" + id.String()
}

// IsValid reports whether id carries the prefix followed by a non nil uuid.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	raw, found := strings.CutPrefix(id, prefix+":")
	if !found {
		return false
	}
	return uuid.FromStringOrNil(raw) != uuid.Nil
}

// RequestID returns the received request id when valid, a new one otherwise.
func RequestID(ids UIDHandler, received string) string {
	if ids.IsValid(received, RequestIDPrefix) {
		return received
	}
	return ids.Generate(RequestIDPrefix)
}
