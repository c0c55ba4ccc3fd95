package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/Nzyazin/finledger/internal/core/auth"
	"github.com/Nzyazin/finledger/internal/core/handler"
	"github.com/Nzyazin/finledger/internal/core/logger"
	middlWre "github.com/Nzyazin/finledger/internal/core/middleware"
	"github.com/Nzyazin/finledger/internal/core/repository/postgres"
	"github.com/Nzyazin/finledger/internal/core/usecase"
	"github.com/Nzyazin/finledger/pkg/config"
	"github.com/Nzyazin/finledger/pkg/postgresdb"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

type Server struct {
	router        *mux.Router
	log           logger.Logger
	httpServer    *http.Server
	ledgerHandler *handler.LedgerHandler
	userHandler   *handler.UserHandler
	tokens        *auth.JWTManager
	db            *postgresdb.Database
	addr          string
}

func NewServer(log logger.Logger) (*Server, error) {

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := postgresdb.NewPostgresDB(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	operationStore := postgres.NewPostgresOperationStore(db.DB, log)
	userRepository := postgres.NewPostgresUserRepo(db.DB, log)

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	balanceCalculator := usecase.NewBalanceCalculator(operationStore, userRepository, log)
	ledgerUsecase := usecase.NewLedgerUsecase(operationStore, userRepository, balanceCalculator, log)
	statementUsecase := usecase.NewStatementUsecase(operationStore, userRepository, log)
	userUsecase := usecase.NewUserUsecase(userRepository, tokens, log)

	server := &Server{
		log:           log,
		router:        mux.NewRouter(),
		ledgerHandler: handler.NewLedgerHandler(ledgerUsecase, statementUsecase, log),
		userHandler:   handler.NewUserHandler(userUsecase, log),
		tokens:        tokens,
		db:            db,
		addr:          cfg.HTTPAddr,
	}

	server.router.Use(loggingMiddleware(server.log))

	mw := middleware.New(middleware.Config{
		Recorder: prometheus.NewRecorder(prometheus.Config{}),
	})

	server.router.Use(func(next http.Handler) http.Handler {
		return std.Handler("", mw, next)
	})

	server.RegisterRoutes()

	return server, nil
}

func (s *Server) RegisterRoutes() {
	s.router.Use(
		middlWre.WithErrorHandler(s.log),
		middlWre.Recovery(s.log),
	)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users", s.userHandler.Create).Methods("POST")
	api.HandleFunc("/sessions", s.userHandler.Authenticate).Methods("POST")

	secured := api.NewRoute().Subrouter()
	secured.Use(auth.Middleware(s.tokens, s.log))
	secured.HandleFunc("/profile", s.userHandler.Profile).Methods("GET")
	secured.HandleFunc("/statements/deposit", s.ledgerHandler.Deposit).Methods("POST")
	secured.HandleFunc("/statements/withdraw", s.ledgerHandler.Withdraw).Methods("POST")
	secured.HandleFunc("/statements/transfer/{receiver_id}", s.ledgerHandler.Transfer).Methods("POST")
	secured.HandleFunc("/statements/balance", s.ledgerHandler.GetStatement).Methods("GET")
	secured.HandleFunc("/statements/{operation_id}", s.ledgerHandler.GetOperation).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	s.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
}

func (s *Server) Addr() string {
	return s.addr
}

func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       9 * time.Second,
		WriteTimeout:      12 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 60 * time.Second,
	}

	s.httpServer = srv

	return srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	var shutdownErr error

	go func() {
		if s.httpServer != nil {
			err := s.httpServer.Shutdown(ctx)
			if err != nil {
				s.log.Error("failed to shutdown HTTP server", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
			}
		}

		if s.db != nil {
			err := s.db.Close()
			if err != nil {
				s.log.Error("failed to close database connection", logger.ErrorField("error", err))
				shutdownErr = fmt.Errorf("database shutdown error: %w", err)
			}
		}

		close(done)
	}()

	select {
	case <-done:
		return shutdownErr
	case <-ctx.Done():
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Info("HTTP request",
				logger.StringField("method", r.Method),
				logger.StringField("path", r.URL.Path),
				logger.StringField("remote_addr", r.RemoteAddr),
				logger.StringField("user_agent", r.UserAgent()),
			)
			next.ServeHTTP(w, r)
		})
	}
}
