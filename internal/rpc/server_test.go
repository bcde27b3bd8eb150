package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/config"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/handler"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/metrics"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/provider"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	primaryMux := http.NewServeMux()
	primaryMux.HandleFunc("/tickers/btc-bitcoin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTC","rank":1,"quotes":{"USD":{"price":65000,"volume_24h":1000000,"percent_change_24h":2.5}}}`))
	})
	primarySrv := httptest.NewServer(primaryMux)
	t.Cleanup(primarySrv.Close)
	secondarySrv := httptest.NewServer(http.NewServeMux())
	t.Cleanup(secondarySrv.Close)

	p := provider.NewWithSources(
		provider.NewPrimary(provider.Config{BaseURL: primarySrv.URL}),
		provider.NewSecondary(provider.Config{BaseURL: secondarySrv.URL}),
	)
	h := handler.New(p, metrics.NewCollector(), config.Defaults())
	return NewServer(h, metrics.NewCollector())
}

func runLines(t *testing.T, s *Server, lines ...string) []Response {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	err := s.Serve(context.Background(), in, &out)
	require.NoError(t, err)

	var responses []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestInitializeReturnsProtocolVersion(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	raw, err := json.Marshal(responses[0].Result)
	require.NoError(t, err)
	var result InitializeResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, ProtocolVersion, result.ProtocolVersion)
	assert.Equal(t, ServerName, result.ServerInfo.Name)
}

func TestToolsListReturnsFullSurface(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Len(t, responses, 1)

	raw, err := json.Marshal(responses[0].Result)
	require.NoError(t, err)
	var result ToolsListResult
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Len(t, result.Tools, 16)

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, "object", tool.InputSchema["type"])
	}
	assert.True(t, names["get_crypto_price"])
	assert.True(t, names["get_full_analysis"])
	assert.True(t, names["search_tokens_advanced"])
}

func TestToolsCallRoundTrip(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"get_crypto_price","arguments":{"symbol":"BTC"}}}`,
	)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	raw, err := json.Marshal(responses[0].Result)
	require.NoError(t, err)
	var result ToolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	assert.Contains(t, result.Content[0].Text, "65000")
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s, `{"jsonrpc":"2.0","id":4,"method":"bogus"}`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, ErrCodeMethodNotFound, responses[0].Error.Code)
}

func TestUnknownToolReturnsInvalidParams(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s,
		`{"jsonrpc":"2.0","id":5,"method":"tools/call","params":{"name":"not_a_tool","arguments":{}}}`,
	)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, ErrCodeInvalidParams, responses[0].Error.Code)
}

func TestMalformedJSONReturnsParseError(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s, `{"jsonrpc": this is not json`)
	require.Len(t, responses, 1)
	require.NotNil(t, responses[0].Error)
	assert.Equal(t, ErrCodeParseError, responses[0].Error.Code)
}

func TestNotificationProducesNoResponse(t *testing.T) {
	s := newTestServer(t)
	responses := runLines(t, s, `{"jsonrpc":"2.0","method":"tools/list"}`)
	assert.Len(t, responses, 0)
}
