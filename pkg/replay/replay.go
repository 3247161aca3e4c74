// Package replay provides a local SSE replay server for recorded Responses
// API transcripts.
//
// A transcript is a file of raw SSE frames as captured from the API (see
// sse.NewTeeReader). The server plays a transcript back frame by frame over
// a streaming HTTP response, which makes it a drop-in stand-in for the real
// API during development: point pkg/client's BaseURL at it and stream.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/respond/pkg/sse"
)

// transcriptExt is the file extension transcripts are indexed by.
const transcriptExt = ".sse"

// Config is the configuration options for the replay server.
type Config struct {
	// ListenAddr is the address to serve on, e.g. ":8099".
	ListenAddr string

	// TranscriptsDir is the directory of *.sse transcript files. The
	// index reloads automatically when files change.
	TranscriptsDir string

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Server replays recorded SSE transcripts over HTTP.
type Server struct {
	config  Config
	server  *fiber.App
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu          sync.RWMutex
	transcripts map[string]string
}

// New creates a new Server and loads the transcript index.
func New(config Config) (*Server, error) {
	if config.TranscriptsDir == "" {
		return nil, errors.New("transcripts directory is required")
	}

	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:      config,
		server:      app,
		logger:      config.Logger,
		transcripts: make(map[string]string),
	}

	if err := s.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}
	if err := watcher.Add(config.TranscriptsDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("could not watch transcripts directory: %w", err)
	}
	s.watcher = watcher
	go s.watch()

	app.Get("/transcripts", s.handleList)
	app.Get("/transcripts/:name", s.handleReplay)
	app.Post("/responses", s.handleResponses)

	return s, nil
}

// Run starts the replay server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting replay server",
		zap.String("listen", s.config.ListenAddr),
		zap.String("transcripts", s.config.TranscriptsDir),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// RunWithListener starts the replay server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting replay server",
		zap.String("listen", listener.Addr().String()),
		zap.String("transcripts", s.config.TranscriptsDir),
	)

	return s.server.Listener(listener)
}

// Close shuts down the server and stops the directory watcher.
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Close()
	}
	return s.server.Shutdown()
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.server
}

// Names returns the sorted set of indexed transcript names.
func (s *Server) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.transcripts))
	for name := range s.transcripts {
		names = append(names, name)
	}
	return names
}

// reload rescans the transcripts directory and swaps the index.
func (s *Server) reload() error {
	entries, err := os.ReadDir(s.config.TranscriptsDir)
	if err != nil {
		return fmt.Errorf("could not read transcripts directory: %w", err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), transcriptExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), transcriptExt)
		index[name] = filepath.Join(s.config.TranscriptsDir, entry.Name())
	}

	s.mu.Lock()
	s.transcripts = index
	s.mu.Unlock()

	s.logger.Debug("transcript index loaded", zap.Int("count", len(index)))
	return nil
}

// watch reloads the index whenever the transcripts directory changes.
func (s *Server) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("transcripts changed", zap.String("file", event.Name))
			if err := s.reload(); err != nil {
				s.logger.Warn("transcript index reload failed", zap.Error(err))
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("transcript watcher error", zap.Error(err))
		}
	}
}

// lookup resolves a transcript name to its path.
func (s *Server) lookup(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, ok := s.transcripts[name]
	return path, ok
}

// handleList returns the indexed transcript names.
func (s *Server) handleList(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"transcripts": s.Names()})
}

// handleReplay streams a transcript by name.
func (s *Server) handleReplay(c *fiber.Ctx) error {
	name := c.Params("name")
	path, ok := s.lookup(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown transcript: " + name,
		})
	}

	return s.streamTranscript(c, path)
}

// handleResponses emulates POST /responses: the transcript is selected by
// the requested model name. Non-streaming requests get 400; the replay
// server only speaks SSE.
func (s *Server) handleResponses(c *fiber.Ctx) error {
	var req struct {
		Model  string `json:"model"`
		Stream bool   `json:"stream"`
	}
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if !req.Stream {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "replay server only serves streaming requests",
		})
	}

	path, ok := s.lookup(req.Model)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no transcript for model: " + req.Model,
		})
	}

	return s.streamTranscript(c, path)
}

// streamTranscript plays the transcript file frame by frame.
//
// io.Pipe gives direct backpressure: pw.Write blocks until fasthttp's
// chunked writer consumes the data, so every frame reaches the client as
// its own chunk instead of buffering in memory.
func (s *Server) streamTranscript(c *fiber.Ctx, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("could not read transcript", zap.String("path", path), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not read transcript",
		})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")

	pr, pw := io.Pipe()
	go s.writeFrames(pw, data)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// writeFrames writes each complete frame of the transcript to the pipe.
func (s *Server) writeFrames(pw *io.PipeWriter, data []byte) {
	defer pw.Close()

	splitter := sse.NewSplitter()

	// The trailing delimiter makes an unterminated final frame complete
	// instead of silently dropped.
	frames := splitter.Feed(append(data, '\n', '\n'))

	for _, frame := range frames {
		if strings.TrimSpace(frame) == "" {
			continue
		}
		if _, err := fmt.Fprintf(pw, "%s\n\n", frame); err != nil {
			// Client went away; nothing to clean up.
			return
		}
	}
}
