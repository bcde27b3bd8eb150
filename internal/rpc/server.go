package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/handler"
	"github.com/M-Pineapple/CryptoAnalysisMCP/internal/metrics"
)

// ServerName and ServerVersion identify this server to a client's
// initialize call.
const (
	ServerName    = "taserver"
	ServerVersion = "1.0.0"
)

// Server reads JSON-RPC 2.0 requests line by line from in and writes
// responses line by line to out (spec §6: "line-delimited JSON over
// stdin/stdout, one message per line").
type Server struct {
	handler *handler.Handler
	metrics *metrics.Collector
	tools   map[string]toolEntry
}

// NewServer builds a Server dispatching tools/call onto h.
func NewServer(h *handler.Handler, m *metrics.Collector) *Server {
	return &Server{handler: h, metrics: m, tools: registry()}
}

// Serve runs the read/dispatch/write loop until in is exhausted or ctx
// is cancelled. Each line is one JSON-RPC message; a line that is not
// valid JSON gets a parse-error response with a null id.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(out)
	defer writer.Flush()

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			resp := newErrorResponse(nil, ErrCodeParseError, "invalid JSON: "+err.Error())
			if werr := writeResponse(writer, resp); werr != nil {
				return werr
			}
			continue
		}

		resp, skip := s.dispatch(ctx, req)
		if skip {
			continue
		}
		if err := writeResponse(writer, resp); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func writeResponse(w *bufio.Writer, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}

// dispatch handles one request and reports whether the caller should
// skip writing a response (true only for notifications).
func (s *Server) dispatch(ctx context.Context, req Request) (Response, bool) {
	if req.IsNotification() {
		log.Debug().Str("method", req.Method).Msg("notification received")
		return Response{}, true
	}

	switch req.Method {
	case "initialize":
		return newResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      ServerInfo{Name: ServerName, Version: ServerVersion},
			Capabilities:    map[string]interface{}{"tools": map[string]interface{}{}},
		}), false

	case "tools/list":
		return newResponse(req.ID, ToolsListResult{Tools: toolSpecs(s.tools)}), false

	case "tools/call":
		return s.dispatchToolCall(ctx, req), false

	default:
		return newErrorResponse(req.ID, ErrCodeMethodNotFound, fmt.Sprintf("unknown method %q", req.Method)), false
	}
}

func (s *Server) dispatchToolCall(ctx context.Context, req Request) Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return newErrorResponse(req.ID, ErrCodeInvalidParams, "malformed tools/call params: "+err.Error())
	}

	entry, ok := s.tools[params.Name]
	if !ok {
		return newErrorResponse(req.ID, ErrCodeInvalidParams, fmt.Sprintf("unknown tool %q", params.Name))
	}

	correlationID := uuid.New().String()
	logger := log.With().Str("correlation_id", correlationID).Str("tool", params.Name).Logger()
	logger.Info().Msg("tool call dispatched")

	start := time.Now()
	payload, err := entry.fn(ctx, s.handler, params.Arguments)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		logger.Error().Err(err).Msg("tool call failed")
		if s.metrics != nil {
			s.metrics.RecordToolCall(params.Name, "error", elapsed)
		}
		return newErrorResponse(req.ID, ErrCodeInternalError, err.Error())
	}

	if s.metrics != nil {
		s.metrics.RecordToolCall(params.Name, "ok", elapsed)
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("tool call completed")

	result, err := textResult(payload)
	if err != nil {
		return newErrorResponse(req.ID, ErrCodeInternalError, "failed to encode tool result: "+err.Error())
	}
	return newResponse(req.ID, result)
}
