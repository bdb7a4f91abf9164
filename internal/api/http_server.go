package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const userIDHeader = "X-Sharer-User-Id"

type UserService interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, update models.UserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type ItemService interface {
	CreateItem(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	UpdateItem(ctx context.Context, userID, itemID int64, update models.ItemUpdate) (*models.Item, error)
	DeleteItem(ctx context.Context, userID, itemID int64) error
	GetItem(ctx context.Context, userID, itemID int64) (*models.ItemView, error)
	GetOwnerItems(ctx context.Context, ownerID int64, from int, size *int) ([]*models.ItemView, error)
	Search(ctx context.Context, userID int64, text string, from int, size *int) ([]*models.Item, error)
	AddComment(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, bookerID int64, input models.BookingCreate) (*models.Booking, error)
	UpdateBooking(ctx context.Context, bookingID, userID int64, approved bool) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*models.Booking, error)
	GetBookings(ctx context.Context, userID int64, state string, from int, size *int) ([]*models.Booking, error)
	GetOwnerBookings(ctx context.Context, userID int64, state string, from int, size *int) ([]*models.Booking, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	GetRequest(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error)
	GetOwnRequests(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	GetOtherRequests(ctx context.Context, userID int64, from int, size *int) ([]*models.ItemRequest, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Services struct {
	Users    UserService
	Items    ItemService
	Bookings BookingService
	Requests RequestService
}

// HTTPServer exposes the shareit REST API.
type HTTPServer struct {
	cfg      config.APIConfig
	services Services
	db       Pinger
	limiter  domain.RateLimiter
	server   *http.Server
	router   *mux.Router
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewHTTPServer builds the router. limiter may be nil, which disables rate limiting.
func NewHTTPServer(cfg config.APIConfig, services Services, db Pinger, limiter domain.RateLimiter, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:      cfg,
		services: services,
		db:       db,
		limiter:  limiter,
		router:   mux.NewRouter(),
		logger:   logger,
		now:      time.Now,
	}
	s.routes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return s
}

func (s *HTTPServer) routes() {
	r := s.router
	r.Use(requestIDMiddleware, s.recoverMiddleware, s.loggingMiddleware, metricsMiddleware, s.rateLimitMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("", s.handleGetUsers).Methods(http.MethodGet)
	users.HandleFunc("", s.handleCreateUser).Methods(http.MethodPost)
	users.HandleFunc("/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPatch)
	users.HandleFunc("/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)

	items := r.PathPrefix("/items").Subrouter()
	items.HandleFunc("", s.handleGetOwnerItems).Methods(http.MethodGet)
	items.HandleFunc("", s.handleCreateItem).Methods(http.MethodPost)
	items.HandleFunc("/search", s.handleSearchItems).Methods(http.MethodGet)
	items.HandleFunc("/{id:[0-9]+}", s.handleGetItem).Methods(http.MethodGet)
	items.HandleFunc("/{id:[0-9]+}", s.handleUpdateItem).Methods(http.MethodPatch)
	items.HandleFunc("/{id:[0-9]+}", s.handleDeleteItem).Methods(http.MethodDelete)
	items.HandleFunc("/{id:[0-9]+}/comment", s.handleAddComment).Methods(http.MethodPost)

	bookings := r.PathPrefix("/bookings").Subrouter()
	bookings.HandleFunc("", s.handleGetBookings).Methods(http.MethodGet)
	bookings.HandleFunc("", s.handleCreateBooking).Methods(http.MethodPost)
	bookings.HandleFunc("/owner", s.handleGetOwnerBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/owner/export", s.handleExportOwnerBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/{id:[0-9]+}", s.handleGetBooking).Methods(http.MethodGet)
	bookings.HandleFunc("/{id:[0-9]+}", s.handleUpdateBooking).Methods(http.MethodPatch)

	requests := r.PathPrefix("/requests").Subrouter()
	requests.HandleFunc("", s.handleGetOwnRequests).Methods(http.MethodGet)
	requests.HandleFunc("", s.handleCreateRequest).Methods(http.MethodPost)
	requests.HandleFunc("/all", s.handleGetOtherRequests).Methods(http.MethodGet)
	requests.HandleFunc("/{id:[0-9]+}", s.handleGetRequest).Methods(http.MethodGet)
}

// Handler returns the routed handler with all middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error().Err(err).Msg("health check: database unreachable")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
