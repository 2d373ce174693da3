package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/quantfeed/tradecast/internal/broker"
	"github.com/quantfeed/tradecast/internal/version"
)

// Config holds consumer listener settings.
type Config struct {
	ListenAddr   string        // Address for the HTTP/WebSocket listener
	SendBuffer   int           // Per-consumer outbound queue capacity
	WriteTimeout time.Duration // Write deadline per outbound frame
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ListenAddr:   ":8080",
		SendBuffer:   256,
		WriteTimeout: 5 * time.Second,
	}
}

// SymbolSource reports the size of the loaded symbol universe.
type SymbolSource interface {
	Size() int
}

// Server accepts consumer connections and bridges them to the broker.
type Server struct {
	cfg     Config
	broker  *broker.Broker
	symbols SymbolSource
	logger  *slog.Logger

	upgrader websocket.Upgrader
}

// New creates a Server.
func New(cfg Config, b *broker.Broker, symbols SymbolSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:     cfg,
		broker:  b,
		symbols: symbols,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Consumers are unauthenticated; origin is not policy here.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then shuts the listener down.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("consumer listener started", "addr", s.cfg.ListenAddr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleWS upgrades a consumer connection and pumps it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sender := newSender(ws, s.cfg.SendBuffer, s.cfg.WriteTimeout, s.logger)
	consumer := s.broker.Register(sender)

	go sender.writePump()

	s.logger.Info("consumer connected",
		"consumer", consumer.ID,
		"remote", r.RemoteAddr,
	)

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("consumer read error", "consumer", consumer.ID, "error", err)
			}
			break
		}

		resp := s.broker.HandleCommand(consumer, data)
		if err := sender.Send(resp); err != nil {
			s.logger.Debug("response delivery failed", "consumer", consumer.ID, "error", err)
			break
		}
	}

	s.broker.Deregister(consumer)
	sender.close()
	ws.Close()

	s.logger.Info("consumer disconnected", "consumer", consumer.ID)
}

// handleHealth reports registry sizes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.broker.Stats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":        "ok",
		"version":       version.Version,
		"symbols":       s.symbols.Size(),
		"consumers":     stats.Consumers,
		"providers":     stats.Providers,
		"subscriptions": stats.Subscriptions,
	})
}
