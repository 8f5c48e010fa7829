package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/drawhub/drawhub-core/internal/audit"
	"github.com/drawhub/drawhub-core/internal/auth"
	"github.com/drawhub/drawhub-core/internal/diagram"
	"github.com/drawhub/drawhub-core/internal/infrastructure/config"
	"github.com/drawhub/drawhub-core/internal/infrastructure/logging"
	"github.com/drawhub/drawhub-core/internal/room"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// auditBufferSize is the capacity of the async audit channel. Writes beyond
// capacity are dropped with a warning rather than blocking a request.
const auditBufferSize = 256

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config      config.APIConfig
	Security    config.SecurityConfig
	Logger      *logging.Logger
	UserRepo    auth.UserRepository
	AccessRepo  auth.RoomAccessRepository
	RoomRepo    room.Repository
	DiagramRepo diagram.Repository
	AuditRepo   audit.Repository
	Version     string
}

// Server is the HTTP API server for drawhub.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg         config.APIConfig
	secCfg      config.SecurityConfig
	logger      *logging.Logger
	userRepo    auth.UserRepository
	accessRepo  auth.RoomAccessRepository
	roomRepo    room.Repository
	diagramRepo diagram.Repository
	auditRepo   audit.Repository
	policy      *auth.RoomPolicy
	version     string
	server      *http.Server
	auditCh     chan *audit.AuditLog
	auditDone   chan struct{}
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.AccessRepo == nil {
		return nil, fmt.Errorf("room access repository is required")
	}
	if deps.RoomRepo == nil {
		return nil, fmt.Errorf("room repository is required")
	}
	if deps.DiagramRepo == nil {
		return nil, fmt.Errorf("diagram repository is required")
	}

	return &Server{
		cfg:         deps.Config,
		secCfg:      deps.Security,
		logger:      deps.Logger,
		userRepo:    deps.UserRepo,
		accessRepo:  deps.AccessRepo,
		roomRepo:    deps.RoomRepo,
		diagramRepo: deps.DiagramRepo,
		auditRepo:   deps.AuditRepo,
		policy:      auth.NewRoomPolicy(deps.AccessRepo),
		version:     deps.Version,
		auditCh:     make(chan *audit.AuditLog, auditBufferSize),
		auditDone:   make(chan struct{}),
	}, nil
}

// Start begins listening for HTTP connections.
//
// It sets up the router, starts the audit writer goroutine, and launches
// the HTTP listener in a background goroutine. The server can be stopped
// with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.drainAuditLog(srvCtx)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           router,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// stops the audit writer after the remaining buffered entries are flushed.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	err := s.server.Shutdown(ctx)

	// Stop the audit writer once no more requests can enqueue entries.
	if s.cancel != nil {
		s.cancel()
		select {
		case <-s.auditDone:
		case <-ctx.Done():
			s.logger.Warn("audit writer did not flush before shutdown deadline")
		}
	}

	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}

// auditLog enqueues an audit entry without blocking the request path.
// Entries are dropped (with a warning) if the buffer is full or the
// audit repository is not configured.
func (s *Server) auditLog(action, entityType, entityID, userID string, details map[string]any) {
	if s.auditRepo == nil {
		return
	}

	entry := &audit.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		UserID:     userID,
		Source:     "api",
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	select {
	case s.auditCh <- entry:
	default:
		s.logger.Warn("audit buffer full, dropping entry",
			"action", action, "entity_type", entityType, "entity_id", entityID)
	}
}

// drainAuditLog is the single writer for the audit trail. It persists
// entries as they arrive and flushes whatever remains in the buffer
// when the context is cancelled.
func (s *Server) drainAuditLog(ctx context.Context) {
	defer close(s.auditDone)

	persist := func(entry *audit.AuditLog) {
		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.auditRepo.Create(writeCtx, entry); err != nil {
			s.logger.Error("audit write failed", "error", err, "action", entry.Action)
		}
	}

	for {
		select {
		case entry := <-s.auditCh:
			persist(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-s.auditCh:
					persist(entry)
				default:
					return
				}
			}
		}
	}
}
