// Package replay serves a recorded completion stream over HTTP so the
// decoder and CLI can be exercised without a live LLM endpoint.
package replay

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/textstream/pkg/logger"
)

// Server replays one recorded stream to every request on its route.
type Server struct {
	config Config
	stream []byte
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a replay server for stream, the raw bytes of a
// previously recorded response body.
func NewServer(config Config, stream []byte, l *slog.Logger) *Server {
	if l == nil {
		l = logger.Nop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config.withDefaults(),
		stream: stream,
		logger: l,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post(s.config.Path, s.handleReplay)

	return s
}

// Run starts the replay server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting replay server",
		"listen", s.config.ListenAddr,
		"path", s.config.Path,
		"bytes", len(s.stream),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the replay server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting replay server",
		"listen", listener.Addr().String(),
		"path", s.config.Path,
	)
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the replay server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Handler exposes the server as a net/http handler. The response body is
// buffered by the conversion, so chunk timing is not preserved.
func (s *Server) Handler() http.Handler {
	return adaptor.FiberApp(s.app)
}

// App returns the underlying fiber app, for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (s *Server) handleReplay(c *fiber.Ctx) error {
	if s.config.APIKey != "" && c.Get(fiber.HeaderAuthorization) != "Bearer "+s.config.APIKey {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid api key",
		})
	}

	s.logger.Debug("replaying stream",
		"remote", c.IP(),
		"request_bytes", len(c.Body()),
		"chunk_size", s.config.ChunkSize,
		"delay", s.config.Delay,
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// pw.Write blocks until fasthttp consumes the chunk, so each chunk is
	// flushed before the delay starts.
	pr, pw := io.Pipe()
	go s.writeChunks(pw)

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

func (s *Server) writeChunks(pw *io.PipeWriter) {
	defer pw.Close()

	size := s.config.ChunkSize
	for off := 0; off < len(s.stream); off += size {
		end := min(off+size, len(s.stream))
		if _, err := pw.Write(s.stream[off:end]); err != nil {
			s.logger.Debug("replay client went away", "error", err, "written", off)
			return
		}
		if s.config.Delay > 0 && end < len(s.stream) {
			time.Sleep(s.config.Delay)
		}
	}
}
