package server

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/drivekeep/drivekeep/internal/api/http"
	"github.com/drivekeep/drivekeep/internal/api/middleware"
	"github.com/drivekeep/drivekeep/internal/domain/auth"
	"github.com/drivekeep/drivekeep/internal/domain/clipboard"
	"github.com/drivekeep/drivekeep/internal/domain/drive"
	"github.com/drivekeep/drivekeep/internal/domain/files"
	"github.com/drivekeep/drivekeep/internal/domain/permission"
	"github.com/drivekeep/drivekeep/internal/domain/session"
	"github.com/drivekeep/drivekeep/internal/domain/usage"
	"github.com/drivekeep/drivekeep/internal/infrastructure/config"
	"github.com/drivekeep/drivekeep/internal/infrastructure/logging"
	"github.com/drivekeep/drivekeep/internal/infrastructure/monitoring"
	"github.com/drivekeep/drivekeep/internal/infrastructure/storage"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router   *gin.Engine
	db       *badger.DB
	sessions *session.Manager
	logger   *logging.Logger
	config   *config.Config
}

// NewServer creates a new server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing DriveKeep server",
		zap.String("port", cfg.Server.Port),
		zap.String("drives_config", cfg.Data.DrivesFile),
	)

	metrics := monitoring.NewMetrics()

	fileCfg, err := config.LoadFile(cfg.Data.DrivesFile)
	if err != nil {
		return nil, fmt.Errorf("load drives config: %w", err)
	}

	drives := make([]drive.Drive, 0, len(fileCfg.Drives))
	for _, d := range fileCfg.Drives {
		drives = append(drives, drive.Drive{Label: d.Label, Root: d.Root})
	}
	registry, err := drive.NewRegistry(drives)
	if err != nil {
		return nil, fmt.Errorf("build drive registry: %w", err)
	}
	for _, d := range registry.List() {
		logger.Info("Registered drive", zap.String("label", d.Label), zap.String("root", d.Root))
	}

	db, err := storage.Open(cfg.Data.Dir, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	perms, err := permission.NewStore(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load permissions: %w", err)
	}

	// A session carries its clipboard; evicting one drops the other.
	clip := clipboard.NewManager()
	sessions := session.NewManager(cfg.Session.TTL, clip.Clear)
	sessions.StartSweep(cfg.Session.TTL / 4)

	authSvc, err := auth.NewService(db, sessions)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load users: %w", err)
	}
	for _, u := range fileCfg.Users {
		if err := authSvc.Seed(u.Username, u.Password, u.Admin); err != nil {
			logger.Warn("Failed to seed user", zap.String("username", u.Username), zap.Error(err))
		}
	}

	filesSvc := files.NewService(registry, perms, logger)
	usageRep := usage.NewReporter(registry)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := http.NewHandlers(filesSvc, authSvc, sessions, clip, usageRep, perms, metrics, logger)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/auth/login", handlers.Login)

	authed := router.Group("/", middleware.Auth(sessions, authSvc))
	{
		authed.POST("/auth/logout", handlers.Logout)
		authed.GET("/auth/me", handlers.Me)

		authed.GET("/drives", handlers.ListDrives)
		authed.GET("/drives/:drive/list", handlers.Listing)
		authed.POST("/drives/:drive/folders", handlers.CreateFolder)
		authed.POST("/drives/:drive/rename", handlers.Rename)
		authed.POST("/drives/:drive/delete", handlers.Delete)
		authed.POST("/drives/:drive/bulk-delete", handlers.BulkDelete)
		authed.POST("/drives/:drive/upload", handlers.Upload)
		authed.GET("/drives/:drive/download", handlers.Download)
		authed.POST("/drives/:drive/compress", handlers.Compress)
		authed.POST("/drives/:drive/uncompress", handlers.Uncompress)

		authed.POST("/clipboard/copy", handlers.ClipboardCopy)
		authed.POST("/clipboard/cut", handlers.ClipboardCut)
		authed.GET("/clipboard", handlers.ClipboardGet)
		authed.DELETE("/clipboard", handlers.ClipboardClear)
		authed.POST("/clipboard/paste", handlers.ClipboardPaste)

		authed.GET("/usage", handlers.Usage)

		admin := authed.Group("/", middleware.RequireAdmin())
		{
			admin.GET("/permissions", handlers.ListPermissions)
			admin.POST("/permissions", handlers.GrantPermission)
			admin.DELETE("/permissions/:id", handlers.RevokePermission)
			admin.GET("/users", handlers.ListUsers)
			admin.POST("/users", handlers.CreateUser)
		}
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		db:       db,
		sessions: sessions,
		logger:   logger,
		config:   cfg,
	}, nil
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.sessions.Stop()

	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.Error(err))
		return fmt.Errorf("close database: %w", err)
	}

	s.logger.Sync()
	return nil
}
