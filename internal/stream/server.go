// Package stream serves a live preview of the annotated frames over HTTP.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"road-vision/internal/metrics"
)

// FrameStats is the per-frame telemetry record pushed to websocket clients.
type FrameStats struct {
	RunID      string               `json:"run_id"`
	Frame      int                  `json:"frame"`
	Size       string               `json:"size"`
	FPS        int                  `json:"fps"`
	Features   bool                 `json:"features"`
	LeftLane   bool                 `json:"left_lane"`
	RightLane  bool                 `json:"right_lane"`
	Segments   int                  `json:"segments"`
	Detections map[string]int       `json:"detections"`
	Stages     []metrics.StageStats `json:"stages,omitempty"`
	Timestamp  string               `json:"timestamp"`
}

// Server is the preview HTTP server: /stream (MJPEG), /telemetry
// (websocket JSON) and /health.
type Server struct {
	logger   logrus.FieldLogger
	addr     string
	quality  int
	router   *mux.Router
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	frames    map[chan []byte]struct{}
	stats     map[chan FrameStats]struct{}
	closed    bool

	mu        sync.RWMutex
	lastStats FrameStats
	written   uint64
}

// NewServer creates the preview server. Nothing listens until Start.
func NewServer(addr string, jpegQuality int, logger logrus.FieldLogger) *Server {
	s := &Server{
		logger:  logger,
		addr:    addr,
		quality: jpegQuality,
		router:  mux.NewRouter(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		frames: make(map[chan []byte]struct{}),
		stats:  make(map[chan FrameStats]struct{}),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/stream", s.handleStream).Methods("GET")
	s.router.HandleFunc("/telemetry", s.handleTelemetry)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler exposes the routes for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.addr).Info("Preview server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("preview server: %w", err)
	}
}

// WriteFrame JPEG-encodes frame and offers it to every stream client.
// Slow clients skip frames rather than stall the caller.
func (s *Server) WriteFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("cannot stream empty frame")
	}
	if !s.hasFrameClients() {
		return nil
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{gocv.IMWriteJpegQuality, s.quality})
	if err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())

	s.mu.Lock()
	s.written++
	s.mu.Unlock()

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for ch := range s.frames {
		select {
		case ch <- data:
		default:
		}
	}
	return nil
}

// Publish records stats and forwards them to telemetry clients.
func (s *Server) Publish(stats FrameStats) {
	s.mu.Lock()
	s.lastStats = stats
	s.mu.Unlock()

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for ch := range s.stats {
		select {
		case ch <- stats:
		default:
		}
	}
}

// Close disconnects every client.
func (s *Server) Close() {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.frames {
		close(ch)
	}
	for ch := range s.stats {
		close(ch)
	}
	s.frames = make(map[chan []byte]struct{})
	s.stats = make(map[chan FrameStats]struct{})
}

func (s *Server) hasFrameClients() bool {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.frames) > 0
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "close")

	frameChan := make(chan []byte, 2)
	if !s.subscribeFrames(frameChan) {
		http.Error(w, "server closing", http.StatusServiceUnavailable)
		return
	}
	defer s.unsubscribeFrames(frameChan)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case data, ok := <-frameChan:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
				return
			}
			if _, err := w.Write(data); err != nil {
				return
			}
			if _, err := fmt.Fprint(w, "\r\n"); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates := make(chan FrameStats, 8)
	if !s.subscribeStats(updates) {
		return
	}
	defer s.unsubscribeStats(updates)

	s.mu.RLock()
	last := s.lastStats
	s.mu.RUnlock()
	if last.Timestamp != "" {
		if err := conn.WriteJSON(last); err != nil {
			return
		}
	}

	for stats := range updates {
		if err := conn.WriteJSON(stats); err != nil {
			s.logger.WithError(err).Debug("WebSocket write failed")
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	written := s.written
	last := s.lastStats
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"status":          "healthy",
		"run_id":          last.RunID,
		"frame":           last.Frame,
		"frames_streamed": written,
	})
	if err != nil {
		s.logger.WithError(err).Debug("Health response write failed")
	}
}

func (s *Server) subscribeFrames(ch chan []byte) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.closed {
		return false
	}
	s.frames[ch] = struct{}{}
	s.logger.WithField("clients", len(s.frames)).Info("Stream client connected")
	return true
}

func (s *Server) unsubscribeFrames(ch chan []byte) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.frames[ch]; ok {
		delete(s.frames, ch)
		close(ch)
	}
	s.logger.WithField("clients", len(s.frames)).Info("Stream client disconnected")
}

func (s *Server) subscribeStats(ch chan FrameStats) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if s.closed {
		return false
	}
	s.stats[ch] = struct{}{}
	return true
}

func (s *Server) unsubscribeStats(ch chan FrameStats) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.stats[ch]; ok {
		delete(s.stats, ch)
		close(ch)
	}
}
