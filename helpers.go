package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrModalAlreadyOpen = errors.New("a modal is already open")
	ErrNoModalOpen      = errors.New("no modal is open")
	ErrInvalidState     = errors.New("operation not allowed in the current state")
	ErrUnknownField     = errors.New("unknown draft field")
)

type (
	ContextKey         string
	missingFieldError  string
	unknownFieldError  string
	invalidStorageKind string
)

const RequestIDContextKey ContextKey = "request.id"

func (m missingFieldError) Error() string {
	return string(m) + " is required"
}

func (u unknownFieldError) Error() string {
	return "unknown draft field " + string(u)
}

func (u unknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

func (s invalidStorageKind) Error() string {
	return "unsupported stub storage " + string(s) + ", expected bolt or redis"
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val := ctx.Value(contextKey); val != nil {
		return val.(string)
	}
	return ""
}

// DecodeDraftRequestBody is a helper function to read the content of a book creation or update request.
func DecodeDraftRequestBody(r *http.Request, draft *Draft) error {
	if r.Body == nil {
		return errors.New("invalid book request body")
	}
	return json.NewDecoder(r.Body).Decode(draft)
}

// ValidateDraftRequestBody is a helper function to check if the content of a book creation or update request is valid.
func ValidateDraftRequestBody(draft *Draft) error {
	if len(draft.Title) == 0 {
		return missingFieldError(FieldTitle)
	}

	if len(draft.Author) == 0 {
		return missingFieldError(FieldAuthor)
	}

	if len(draft.ISBN) == 0 {
		return missingFieldError(FieldISBN)
	}

	return nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		netIP = net.ParseIP(strings.TrimSpace(ip))
		if netIP != nil {
			return strings.TrimSpace(ip)
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}
