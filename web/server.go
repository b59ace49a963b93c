// Package web serves the canopy playground: a small HTTP + WebSocket
// JSON-RPC server that parses source over a socket, returns the debug
// events collected during each parse with its reply, and reparses
// incrementally as edits arrive.
package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tliron/commonlog"

	"github.com/odvcencio/canopy"
	"github.com/odvcencio/canopy/grammars"
	"github.com/odvcencio/canopy/highlight"
)

// Server is the playground backend. One session lives per parse; edits
// refer back to it so the reparse can reuse the previous tree.
type Server struct {
	upgrader websocket.Upgrader
	log      commonlog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id     string
	entry  *grammars.LangEntry
	lang   *canopy.Language
	parser *canopy.Parser
	tree   *canopy.Tree
	source string
}

type rpcRequest struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     any       `json:"id"`
	Result any       `json:"result,omitempty"`
	Error  *rpcError `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type parseParams struct {
	Language string `json:"language"`
	Source   string `json:"source"`
}

type editParams struct {
	Session   string `json:"session"`
	StartByte uint32 `json:"startByte"`
	OldEnd    uint32 `json:"oldEnd"`
	Inserted  string `json:"inserted"`
}

type parseResult struct {
	Session    string            `json:"session"`
	Tree       string            `json:"tree"`
	Errors     uint32            `json:"errors"`
	Highlights []highlight.Range `json:"highlights"`
	Events     []string          `json:"events"`
}

// NewServer creates a playground server.
func NewServer(log commonlog.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:      log,
		sessions: map[string]*session{},
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/ws" {
		s.handleWebSocket(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "canopy playground: connect a WebSocket client to /ws")
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("websocket upgrade: %s", err)
		return
	}
	defer conn.Close()

	for {
		var req rpcRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := s.dispatch(&req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req *rpcRequest) rpcResponse {
	result, err := s.call(req.Method, req.Params)
	if err != nil {
		s.log.Errorf("%s: %s", req.Method, err)
		return rpcResponse{ID: req.ID, Error: &rpcError{Code: -32000, Message: err.Error()}}
	}
	return rpcResponse{ID: req.ID, Result: result}
}

func (s *Server) call(method string, params json.RawMessage) (any, error) {
	switch method {
	case "languages":
		var names []string
		for _, entry := range grammars.AllLanguages() {
			names = append(names, entry.Name)
		}
		return names, nil

	case "parse":
		var p parseParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return s.parse(p)

	case "edit":
		var p editParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, err
		}
		return s.edit(p)

	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
}

func (s *Server) parse(p parseParams) (any, error) {
	entry, err := grammars.ByName(p.Language)
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:     uuid.NewString(),
		entry:  entry,
		lang:   entry.Language(),
		source: p.Source,
	}
	sess.parser = canopy.NewParser(sess.lang)

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return s.run(sess, nil)
}

func (s *Server) edit(p editParams) (any, error) {
	s.mu.Lock()
	sess := s.sessions[p.Session]
	s.mu.Unlock()
	if sess == nil {
		return nil, fmt.Errorf("unknown session %q", p.Session)
	}
	if p.StartByte > uint32(len(sess.source)) || p.OldEnd < p.StartByte ||
		p.OldEnd > uint32(len(sess.source)) {
		return nil, fmt.Errorf("edit range out of bounds")
	}

	removed := sess.source[p.StartByte:p.OldEnd]
	edit := makeEdit(sess.source[:p.StartByte], removed, p.Inserted)
	previous := sess.tree.Edit(edit)
	sess.source = sess.source[:p.StartByte] + p.Inserted + sess.source[p.OldEnd:]

	return s.run(sess, previous)
}

func (s *Server) run(sess *session, previous *canopy.Tree) (any, error) {
	var events []string
	sess.parser.SetDebugger(canopy.Debugger{
		Callback: func(debugType canopy.DebugType, message string) {
			events = append(events, debugType.String()+": "+message)
		},
	})

	tree := sess.parser.Parse(canopy.NewStringInput(sess.source), previous)
	if tree == nil {
		return nil, fmt.Errorf("parse failed")
	}
	sess.tree = tree

	ranges := highlight.New(sess.lang, sess.entry.Captures).Highlight(tree)
	s.log.Infof("session %s: parsed %d chars, %d errors",
		sess.id, tree.TotalChars(), tree.ErrorCount())

	return parseResult{
		Session:    sess.id,
		Tree:       tree.StringWithNames(sess.lang),
		Errors:     tree.ErrorCount(),
		Highlights: ranges,
		Events:     events,
	}, nil
}

// makeEdit derives the full edit descriptor, character and extent deltas
// included, from the text before the edit and the removed and inserted
// strings.
func makeEdit(prefix, removed, inserted string) canopy.InputEdit {
	return canopy.InputEdit{
		StartByte:     uint32(len(prefix)),
		BytesRemoved:  uint32(len(removed)),
		BytesAdded:    uint32(len(inserted)),
		StartChar:     uint32(utf8.RuneCountInString(prefix)),
		CharsRemoved:  uint32(utf8.RuneCountInString(removed)),
		CharsAdded:    uint32(utf8.RuneCountInString(inserted)),
		StartPoint:    textExtent(prefix),
		ExtentRemoved: textExtent(removed),
		ExtentAdded:   textExtent(inserted),
	}
}

func textExtent(text string) canopy.Point {
	rows := uint32(strings.Count(text, "\n"))
	lastLine := text
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		lastLine = text[i+1:]
	}
	return canopy.Point{Row: rows, Column: uint32(utf8.RuneCountInString(lastLine))}
}
