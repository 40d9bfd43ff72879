package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/mcpcli/target"
)

func TestNpxArgs(t *testing.T) {
	testCases := []struct {
		description string
		target      *target.Npx
		expect      []string
	}{
		{
			description: "plain package",
			target:      &target.Npx{Package: "@scope/server", RunnerArgs: []string{"-y"}},
			expect:      []string{"-y", "@scope/server"},
		},
		{
			description: "versioned package with tool args",
			target:      &target.Npx{Package: "server", Version: "1.2.3", RunnerArgs: []string{"-y"}, Args: []string{"--root", "/tmp"}},
			expect:      []string{"-y", "server@1.2.3", "--root", "/tmp"},
		},
		{
			description: "bin selection rides in via -p",
			target:      &target.Npx{Package: "@scope/server", Bin: "serve", RunnerArgs: []string{"-y"}},
			expect:      []string{"-y", "-p", "@scope/server", "serve"},
		},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expect, npxArgs(testCase.target), testCase.description)
	}
}

func TestEnvWrap(t *testing.T) {
	command, args := envWrap(nil, "node", []string{"server.js"})
	assert.Equal(t, "node", command)
	assert.Equal(t, []string{"server.js"}, args)

	command, args = envWrap(map[string]string{"B": "2", "A": "1"}, "node", []string{"server.js"})
	assert.Equal(t, "env", command)
	assert.Equal(t, []string{"A=1", "B=2", "node", "server.js"}, args)
}

func TestInterpreterBinary(t *testing.T) {
	assert.Equal(t, "node", interpreterBinary(target.InterpreterNode))
	assert.Equal(t, "python3", interpreterBinary(target.InterpreterPython))
	t.Setenv("MCP_PYTHON", "/opt/python")
	assert.Equal(t, "/opt/python", interpreterBinary(target.InterpreterPython))
}

func TestHTTPClientHeaders(t *testing.T) {
	var gotAuth, gotCustom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Trace")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := New(WithBearerToken("secret"))
	httpClient := s.httpClient(context.Background(), &target.HTTP{URL: server.URL, Headers: map[string]string{"X-Trace": "abc"}})
	require.NotNil(t, httpClient)

	resp, err := httpClient.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "abc", gotCustom)
}

func TestHTTPClientDefault(t *testing.T) {
	s := New()
	assert.Nil(t, s.httpClient(context.Background(), &target.HTTP{URL: "http://localhost"}))
}
