package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"account-service/internal/cache"
	"account-service/internal/config"
	"account-service/internal/handler"
	"account-service/internal/idgen"
	"account-service/internal/lock"
	"account-service/internal/repository"
	"account-service/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *mux.Router
	server *http.Server
	db     *sql.DB
	redis  *goredis.Client
	logger *slog.Logger
	port   string
}

// NewServer connects to PostgreSQL and, when configured, Redis, and wires the
// services and routes.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("Successfully connected to database")

	store := repository.NewStore(db, logger)
	limits := service.Limits{
		MaxAccountsPerUser: cfg.MaxAccountsPerUser,
		CancelWindowDays:   cfg.CancelWindowDays,
	}

	accountService := service.NewAccountService(store, limits, logger)
	transactionService := service.NewTransactionService(store, idgen.NewUUIDGenerator(), limits, logger)

	var (
		redisClient *goredis.Client
		locker      lock.Locker = lock.Noop{}
	)
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Successfully connected to redis", "addr", cfg.RedisAddr)

		locker = lock.NewRedisLocker(redisClient, cfg.LockWait, cfg.LockLease, logger)
		transactionService.WithCache(
			cache.NewViewCache[service.TransactionSummary](redisClient, cache.TransactionViewPrefix, cfg.CacheTTL, logger),
		)
	} else {
		logger.Warn("REDIS_ADDR not set, account locking and transaction caching are disabled")
	}

	accountHandler := handler.NewAccountHandler(accountService, logger)
	transactionHandler := handler.NewTransactionHandler(transactionService, locker, logger)

	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(logger))

	// Account routes
	router.HandleFunc("/account", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/account", accountHandler.DeleteAccount).Methods("DELETE")
	router.HandleFunc("/account", accountHandler.GetAccounts).Methods("GET")

	// Transaction routes
	router.HandleFunc("/transaction/use", transactionHandler.UseBalance).Methods("POST")
	router.HandleFunc("/transaction/cancel", transactionHandler.CancelBalance).Methods("POST")
	router.HandleFunc("/transaction/{transaction_id}", transactionHandler.QueryTransaction).Methods("GET")

	router.HandleFunc("/health", healthHandler(db)).Methods("GET")

	return &Server{
		router: router,
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
			return
		}

		json.NewEncoder(w).Encode(map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Listen first so port "0" resolves to the real port.
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed to start", "error", err)
		}
	}()

	return s.port, nil
}

// Stop drains in-flight requests, then closes Redis and the database.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	if s.redis != nil {
		s.redis.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return err
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	var logger *slog.Logger
	if cfg.ServerPort == "0" {
		// Tests bind port 0 and don't want log noise.
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		server.Stop(context.Background())
		return nil, "", err
	}

	return server, port, nil
}
