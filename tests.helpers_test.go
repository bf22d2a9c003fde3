package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestIDsHandler(t *testing.T) {
	idh := NewIDsHandler()
	id := idh.Generate(RequestIDPrefix)
	assert.True(t, strings.HasPrefix(id, "r:"))
	assert.True(t, idh.IsValid(id, RequestIDPrefix))

	assert.False(t, idh.IsValid(strings.TrimPrefix(id, "r:"), RequestIDPrefix))
	assert.False(t, idh.IsValid("r:not-a-uuid", RequestIDPrefix))
	assert.False(t, idh.IsValid("", RequestIDPrefix))
	assert.False(t, idh.IsValid("r:00000000-0000-0000-0000-000000000000", RequestIDPrefix))
	assert.NotEqual(t, id, idh.Generate(RequestIDPrefix))
}

func TestRequestID(t *testing.T) {
	idh := NewIDsHandler()
	t.Run("should pass: valid received id reused", func(t *testing.T) {
		received := idh.Generate(RequestIDPrefix)
		assert.Equal(t, received, RequestID(idh, received))
	})

	for _, received := range []string{"", "abc", "x:" + strings.TrimPrefix(idh.Generate(RequestIDPrefix), "r:")} {
		t.Run("should pass: invalid id replaced "+received, func(t *testing.T) {
			id := RequestID(idh, received)
			assert.NotEqual(t, received, id)
			assert.True(t, idh.IsValid(id, RequestIDPrefix))
		})
	}
}

func TestValidateDraftRequestBody(t *testing.T) {
	tests := []struct {
		draft Draft
		err   string
	}{
		{Draft{Title: "T", Author: "A", ISBN: "1"}, ""},
		{Draft{Author: "A", ISBN: "1"}, "title is required"},
		{Draft{Title: "T", ISBN: "1"}, "author is required"},
		{Draft{Title: "T", Author: "A"}, "isbn is required"},
		{Draft{}, "title is required"},
	}
	for _, tc := range tests {
		err := ValidateDraftRequestBody(&tc.draft)
		if tc.err == "" {
			assert.NoError(t, err)
			continue
		}
		assert.EqualError(t, err, tc.err)
	}
}

func TestGetRequestSourceIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.9:4321"
	assert.Equal(t, "10.0.0.9", GetRequestSourceIP(req))

	req.Header.Set("X-FORWARDED-FOR", "bogus, 10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetRequestSourceIP(req))

	req.Header.Set("X-REAL-IP", "10.0.0.1")
	assert.Equal(t, "10.0.0.1", GetRequestSourceIP(req))
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{IsProduction: true, LogLevel: zapcore.InfoLevel, GitCommit: "abc123", GitTag: "v1.0.0"}
	logger, flush := SetupLogging(config, &buf, false)
	logger.Debug("hidden")
	logger.Info("controller: books fetched")
	flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	entry := make(map[string]interface{})
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "controller: books fetched", entry["msg"])
	assert.Equal(t, "info", entry["lvl"])
	assert.Equal(t, "abc123", entry["app.commit"])
	assert.Equal(t, "v1.0.0", entry["app.tag"])
}
