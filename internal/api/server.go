package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/iiorcrop/mandi/internal/config"
	"github.com/iiorcrop/mandi/internal/ingest"
	"github.com/iiorcrop/mandi/internal/uploads"
)

// Server handles the HTTP API for staff records and market prices
type Server struct {
	config   *config.Config
	store    Store
	pipeline *ingest.Pipeline
	uploads  *uploads.Store
	router   *mux.Router
	started  time.Time
}

// NewServer creates a new API server. pipeline and uploadStore may be
// nil when the ingestion surface is not needed (tests).
func NewServer(cfg *config.Config, store Store, pipeline *ingest.Pipeline, uploadStore *uploads.Store) *Server {
	s := &Server{
		config:   cfg,
		store:    store,
		pipeline: pipeline,
		uploads:  uploadStore,
		router:   mux.NewRouter(),
		started:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// Router returns the configured HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("/api/health", s.healthHandler).Methods("GET")

	// Staff detail endpoints
	s.router.HandleFunc("/api/staff-details", s.createStaffDetailHandler).Methods("POST")
	s.router.HandleFunc("/api/staff-details", s.listStaffDetailsHandler).Methods("GET")
	s.router.HandleFunc("/api/staff-details/reorder", s.reorderStaffDetailsHandler).Methods("PUT")
	s.router.HandleFunc("/api/staff-details/user/{userID}", s.getStaffDetailByUserHandler).Methods("GET")
	s.router.HandleFunc("/api/staff-details/{id}", s.updateStaffDetailHandler).Methods("PUT")
	s.router.HandleFunc("/api/staff-details/{id}", s.deleteStaffDetailHandler).Methods("DELETE")

	// Staff input endpoints
	s.router.HandleFunc("/api/staff-inputs", s.createStaffInputHandler).Methods("POST")
	s.router.HandleFunc("/api/staff-inputs", s.listStaffInputsHandler).Methods("GET")
	s.router.HandleFunc("/api/staff-inputs/positions", s.updateInputPositionsHandler).Methods("PATCH")
	s.router.HandleFunc("/api/staff-inputs/{id}", s.updateStaffInputHandler).Methods("PUT")
	s.router.HandleFunc("/api/staff-inputs/{id}", s.deleteStaffInputHandler).Methods("DELETE")

	// Market price endpoints
	s.router.HandleFunc("/api/market-prices/upload", s.uploadPricesHandler).Methods("POST")
	s.router.HandleFunc("/api/market-prices/batches/{id}", s.getBatchHandler).Methods("GET")
	s.router.HandleFunc("/api/market-prices", s.listPricesHandler).Methods("GET")
}

// healthHandler returns API health status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		log.Printf("Health check database ping failed: %v", err)
		database = "unreachable"
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
		"database":  database,
	})
}

// Start starts the HTTP server and blocks until a shutdown signal
func (s *Server) Start() error {
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.ServerHost, s.config.ServerPort),
		Handler:      c.Handler(s.router),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting API server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}

	log.Println("Server gracefully stopped")
	return nil
}
