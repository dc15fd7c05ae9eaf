package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akashuv-21/parase/internal/logger"
	"github.com/akashuv-21/parase/internal/types"
	"github.com/akashuv-21/parase/pkg/corpus"
	"github.com/akashuv-21/parase/pkg/evaluator"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

type Config struct {
	Addr         string
	RateLimit    float64
	Burst        int
	MaxBodyBytes int64

	Workers          int
	StringsToRemove  []string
	NormalizeUnicode bool
	IgnoreNodes      []string

	// Store is optional; when set every report is persisted.
	Store types.ResultStore
}

// EvaluateRequest carries both corpora inline.
type EvaluateRequest struct {
	Mode          string          `json:"mode"`
	IgnoreClasses []string        `json:"ignore_classes"`
	Label         json.RawMessage `json:"label"`
	Prediction    json.RawMessage `json:"prediction"`
}

type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data EvaluateRequest `json:"data"`
}

// requestError marks failures caused by the client's input.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

type Server struct {
	config   Config
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
}

func New(config Config) *Server {
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 5.0
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 64 << 20
	}

	return &Server{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the routes behind the rate limiter.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.rateLimit(mux)
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting evaluation server on %s", s.config.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server stopped")
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EvaluateRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	logger.Debug("evaluate request %s", requestID)

	report, err := s.evaluate(r.Context(), req, nil)
	if err != nil {
		status := http.StatusInternalServerError
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.Error("writing response: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.config.MaxBodyBytes)
	sessionID := uuid.NewString()
	logger.Debug("websocket session %s opened", sessionID)

	var mu sync.Mutex
	send := func(msg Message) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("error sending message: %v", err)
		}
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("error reading message: %v", err)
			}
			return
		}

		if msg.Type != "evaluate" {
			send(Message{Type: "error", Content: fmt.Sprintf("unknown message type %q", msg.Type)})
			continue
		}

		report, err := s.evaluate(r.Context(), msg.Data, send)
		if err != nil {
			logger.Debug("websocket session %s: %v", sessionID, err)
			send(Message{Type: "error", Content: err.Error()})
			continue
		}
		send(Message{Type: "result", Data: report})
	}
}

// evaluate validates the request, scores it and persists the report.
// When send is set, a progress message goes out per scored document.
func (s *Server) evaluate(ctx context.Context, req EvaluateRequest, send func(Message)) (*types.Report, error) {
	mode := types.ModeLayout
	if req.Mode != "" {
		m, ok := types.ParseMode(req.Mode)
		if !ok {
			return nil, &requestError{errors.Errorf("%s mode not supported", req.Mode)}
		}
		mode = m
	}

	gtRaw, err := corpus.Parse(req.Label)
	if err != nil {
		return nil, &requestError{errors.Wrap(err, "label")}
	}
	predRaw, err := corpus.Parse(req.Prediction)
	if err != nil {
		return nil, &requestError{errors.Wrap(err, "prediction")}
	}
	if err := corpus.Validate(gtRaw, predRaw); err != nil {
		return nil, &requestError{err}
	}
	gt, pred := gtRaw.Corpus(), predRaw.Corpus()

	opts := evaluator.Options{
		Mode:             mode,
		Workers:          s.config.Workers,
		IgnoreClasses:    req.IgnoreClasses,
		StringsToRemove:  s.config.StringsToRemove,
		NormalizeUnicode: s.config.NormalizeUnicode,
		IgnoreNodes:      s.config.IgnoreNodes,
	}
	if send != nil {
		total := evaluator.Total(mode, gt, pred)
		var done int32
		opts.OnProgress = func(id string) {
			n := atomic.AddInt32(&done, 1)
			send(Message{Type: "progress", Content: id, Data: Progress{Done: int(n), Total: total}})
		}
	}

	report, err := evaluator.Evaluate(ctx, opts, gt, pred)
	if err != nil && !errors.Is(err, evaluator.ErrNoTables) {
		return nil, err
	}

	if s.config.Store != nil {
		run := types.Run{Mode: mode, IgnoreClasses: req.IgnoreClasses, CreatedAt: time.Now()}
		if id, err := s.config.Store.Save(ctx, run, report); err != nil {
			logger.Warn("failed to store report: %v", err)
		} else {
			logger.Info("stored run %d", id)
		}
	}

	return report, nil
}
