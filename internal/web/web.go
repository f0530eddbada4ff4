package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"chronoseq/internal/calendar"
	"chronoseq/internal/chrono"
	"chronoseq/internal/config"
	appLog "chronoseq/internal/log"
	"chronoseq/internal/model"
)

const mimeCBOR = "application/cbor"

// Server provides the HTTP API over the engine.
//
//	GET /health
//	GET /api/point?elements=&seq=
//	GET /api/span?elements=&seq=
//	GET /api/occurrences?elements=&seq=&start=&end=&max=
//	GET /api/recurrence?from=&to=&seq=&start=&end=&max=
//	GET /api/compare?a=&b=&seq_a=&seq_b=
//
// Element lists use the "YR=2023,MH=8,DY=21" syntax. start/end bound an
// enumeration; end defaults to the end of start's span. Responses are JSON,
// or CBOR when the request accepts application/cbor, and carry an ETag.
type Server struct {
	cfg   *config.Config
	rules chrono.Rules
	mux   *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config) *Server {
	rules, err := cfg.Rules()
	if err != nil {
		appLog.Error("invalid year range; using defaults", err)
		rules = chrono.DefaultRules
	}
	s := &Server{
		cfg:   cfg,
		rules: rules,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// An empty username or password disables auth.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="chronoseq", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer serves the API on cfg.Listen until ctx is canceled, then
// shuts down gracefully.
func StartServer(ctx context.Context, cfg *config.Config) error {
	s := NewServer(cfg)
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	appLog.Info("shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/point", s.handlePoint)
	s.mux.HandleFunc("GET /api/span", s.handleSpan)
	s.mux.HandleFunc("GET /api/occurrences", s.handleOccurrences)
	s.mux.HandleFunc("GET /api/recurrence", s.handleRecurrence)
	s.mux.HandleFunc("GET /api/compare", s.handleCompare)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// sequence reads a sequence parameter, falling back to the configured
// default.
func (s *Server) sequence(r *http.Request, name string) (calendar.Sequence, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return s.cfg.Sequence(), nil
	}
	return calendar.ParseSequence(v)
}

// point parses the element list in parameter name, in the sequence given by
// seqParam.
func (s *Server) point(r *http.Request, name, seqParam string) (chrono.TimePoint, error) {
	seq, err := s.sequence(r, seqParam)
	if err != nil {
		return chrono.TimePoint{}, err
	}
	v := r.URL.Query().Get(name)
	if v == "" {
		return chrono.TimePoint{}, errors.New("missing parameter " + name)
	}
	return model.ParsePoint(s.rules, seq, v)
}

func (s *Server) bound(r *http.Request) (chrono.Span, error) {
	seq, err := s.sequence(r, "seq")
	if err != nil {
		return chrono.Span{}, err
	}
	q := r.URL.Query()
	return model.ParseBound(s.rules, seq, q.Get("start"), q.Get("end"))
}

// limit reads max, capped by the configured maximum.
func (s *Server) limit(r *http.Request) int {
	n := parseIntDefault(r.URL.Query().Get("max"), s.cfg.MaxOccurrences)
	if n <= 0 || n > s.cfg.MaxOccurrences {
		n = s.cfg.MaxOccurrences
	}
	return n
}

func (s *Server) handlePoint(w http.ResponseWriter, r *http.Request) {
	tp, err := s.point(r, "elements", "seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, model.NewPoint(tp))
}

func (s *Server) handleSpan(w http.ResponseWriter, r *http.Request) {
	tp, err := s.point(r, "elements", "seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sp, err := tp.ToSpan()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, model.NewPointSpan(tp, sp))
}

func (s *Server) handleOccurrences(w http.ResponseWriter, r *http.Request) {
	tp, err := s.point(r, "elements", "seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	bound, err := s.bound(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	list := model.ListOccurrences(tp, bound, s.limit(r))
	appLog.Info("api occurrences request",
		"elements", model.FormatElements(tp.Elements()),
		"bound", bound.String(),
		"count", len(list.Occurrences),
		"truncated", list.Truncated,
	)
	writeResponse(w, r, http.StatusOK, list)
}

// recurrenceResponse is the response shape for /api/recurrence.
type recurrenceResponse struct {
	From        model.Point        `json:"from"`
	To          model.Point        `json:"to"`
	Occurrences []model.Occurrence `json:"occurrences"`
	Truncated   bool               `json:"truncated,omitempty"`
}

func (s *Server) handleRecurrence(w http.ResponseWriter, r *http.Request) {
	from, err := s.point(r, "from", "seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := s.point(r, "to", "seq")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err := chrono.NewRecurrence(from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bound, err := s.bound(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	spans, truncated := chrono.Take(rec.Within(bound), s.limit(r))
	writeResponse(w, r, http.StatusOK, recurrenceResponse{
		From:        model.NewPoint(from),
		To:          model.NewPoint(to),
		Occurrences: model.Occurrences(spans),
		Truncated:   truncated,
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	a, err := s.point(r, "a", "seq_a")
	if err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.point(r, "b", "seq_b")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sa, err := a.ToSpan()
	if err != nil {
		writeError(w, r, err)
		return
	}
	sb, err := b.ToSpan()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResponse(w, r, http.StatusOK, model.NewComparison(sa, sb))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func wantsCBOR(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), mimeCBOR)
}

// writeResponse encodes v as JSON or CBOR, tags it with a BLAKE3 ETag and
// answers 304 when the client already holds that representation.
func writeResponse(w http.ResponseWriter, r *http.Request, status int, v any) {
	var (
		body        []byte
		contentType string
		err         error
	)
	if wantsCBOR(r) {
		body, err = cbor.Marshal(v)
		contentType = mimeCBOR
	} else {
		var buf bytes.Buffer
		err = json.NewEncoder(&buf).Encode(v)
		body = buf.Bytes()
		contentType = "application/json; charset=utf-8"
	}
	if err != nil {
		appLog.Error("failed to encode response", err, "path", r.URL.Path)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	sum := blake3.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Vary", "Accept")
	if status == http.StatusOK && r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		appLog.Error("failed to write response", err, "path", r.URL.Path)
	}
}

// errorResponse is the body of a 400 answer. Kind carries the engine's
// error kind (e.g. OUT_OF_RANGE) when there is one.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError reports a request error. Every error reaching it stems from
// the request's parameters.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appLog.Debug("api request rejected", "path", r.URL.Path, "err", err)
	writeResponse(w, r, http.StatusBadRequest, errorResponse{
		Error: err.Error(),
		Kind:  string(chrono.KindOf(err)),
	})
}
