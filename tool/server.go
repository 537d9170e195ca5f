// Copyright (c) 2024 The Perun Authors. All rights reserved.
// This file is part of go-algowallet. Use of this source code is governed by a
// MIT-style license that can be found in the LICENSE file.

// Package tool exposes the wallet as a set of named tools with JSON arguments
// and results, and serves them over a line delimited JSON stream.
package tool // import "perun.network/go-algowallet/tool"

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"perun.network/go-algowallet/log"
	"perun.network/go-algowallet/wallet"
)

// Error kinds that only exist at the protocol level.
const (
	KindParseError     wallet.ErrorKind = "ParseError"
	KindMethodNotFound wallet.ErrorKind = "MethodNotFound"
)

// maxLineSize bounds a single request line.
const maxLineSize = 1 << 20

// Error is the error object of a tool response.
type Error struct {
	Kind    wallet.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// toError converts err into a response error. Errors without a kind are
// internal.
func toError(err error) *Error {
	if err == nil {
		return nil
	}
	var terr *Error
	if errors.As(err, &terr) {
		return terr
	}
	return &Error{Kind: wallet.KindOf(err), Message: err.Error()}
}

// Descriptor describes a tool for discovery.
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
}

type handler func(ctx context.Context, args json.RawMessage) (interface{}, error)

type tool struct {
	Descriptor
	call handler
}

// Server dispatches tool calls to a wallet manager.
type Server struct {
	tools   map[string]tool
	metrics *Metrics
	log     log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics makes the server record call metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the server's logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a server exposing the wallet tools of m.
func NewServer(m *wallet.Manager, opts ...Option) *Server {
	s := &Server{
		tools: make(map[string]tool),
		log:   log.WithField("component", "tool"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.register(m)
	return s
}

func (s *Server) add(name, description string, required []string, call handler) {
	s.tools[name] = tool{
		Descriptor: Descriptor{Name: name, Description: description, Required: required},
		call:       call,
	}
}

// Tools returns the descriptors of all tools ordered by name.
func (s *Server) Tools() []Descriptor {
	ds := lo.MapToSlice(s.tools, func(_ string, t tool) Descriptor { return t.Descriptor })
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name < ds[j].Name })
	return ds
}

// Call runs the named tool on the JSON arguments args, which may be empty.
// A returned error is an *Error. Both result and error are set when a
// signature was produced but its spend could not be recorded.
func (s *Server) Call(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	start := time.Now()
	t, ok := s.tools[name]
	if !ok {
		s.metrics.observe("unknown", string(KindMethodNotFound), time.Since(start))
		return nil, &Error{Kind: KindMethodNotFound, Message: "unknown tool " + name}
	}

	res, err := s.call(ctx, t, args)
	outcome := "ok"
	if err != nil {
		outcome = string(err.Kind)
		s.log.WithFields(log.Fields{"tool": name, "kind": err.Kind}).Debug(err.Message)
	}
	s.metrics.observe(name, outcome, time.Since(start))

	if err != nil {
		return res, err
	}
	return res, nil
}

func (s *Server) call(ctx context.Context, t tool, args json.RawMessage) (interface{}, *Error) {
	if err := checkRequired(args, t.Required); err != nil {
		return nil, err
	}
	res, err := t.call(ctx, args)
	return res, toError(err)
}

// result converts a typed manager result into a handler result. A nil
// pointer becomes an untyped nil so that it is omitted from responses.
func result[T any](res *T, err error) (interface{}, error) {
	if res == nil {
		return nil, err
	}
	return res, err
}

// isEmpty reports whether args carries no arguments at all.
func isEmpty(args json.RawMessage) bool {
	trimmed := bytes.TrimSpace(args)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func checkRequired(args json.RawMessage, required []string) *Error {
	fields := map[string]json.RawMessage{}
	if !isEmpty(args) {
		if err := json.Unmarshal(args, &fields); err != nil {
			return &Error{Kind: wallet.KindInvalidParams, Message: "arguments must be a JSON object"}
		}
	}
	for _, name := range required {
		if v, ok := fields[name]; !ok || isEmpty(v) {
			return &Error{Kind: wallet.KindInvalidParams, Message: "missing required argument " + name}
		}
	}
	return nil
}

// decode unmarshals args into v. Unknown fields are ignored.
func decode(args json.RawMessage, v interface{}) error {
	if isEmpty(args) {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return &Error{Kind: wallet.KindInvalidParams, Message: "invalid arguments: " + err.Error()}
	}
	return nil
}

// Request is one line of the served stream.
type Request struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Response answers a Request.
type Response struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Result interface{}     `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

// Serve reads one JSON request per line from r and writes one JSON response
// per line to w until r is exhausted or ctx is done. Requests are handled in
// order.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := enc.Encode(s.handle(ctx, line)); err != nil {
			return errors.Wrap(err, "writing response")
		}
	}
	return errors.Wrap(scanner.Err(), "reading requests")
}

func (s *Server) handle(ctx context.Context, line []byte) *Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return &Response{Error: &Error{Kind: KindParseError, Message: "malformed request: " + err.Error()}}
	}
	res, err := s.Call(ctx, req.Tool, req.Arguments)
	return &Response{ID: req.ID, Result: res, Error: toError(err)}
}
