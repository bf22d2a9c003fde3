package main

import (
	"errors"
	"fmt"
)

// Failure classes of a remote call. The controller handles both the
// same way, they only help callers and logs tell them apart.
var (
	ErrTransport = errors.New("remote: transport failure")
	ErrRejected  = errors.New("remote: request rejected")
)

// TransportError reports a request which never got an http response
// (unreachable host, timeout, cancelled context).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// RejectionError reports a non-2xx response or a 2xx response whose
// body could not be used.
type RejectionError struct {
	Op      string
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: rejected with status %d: %s", e.Op, e.Status, e.Message)
}

func (e *RejectionError) Is(target error) bool {
	return target == ErrRejected
}
