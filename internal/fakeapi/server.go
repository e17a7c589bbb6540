// Package fakeapi is an in-memory implementation of the users API used by
// tests and by "adminctl mock-server".
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/adminapi-client/internal/constants"
	"github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// TokenPath is the route of the OAuth2 password-grant endpoint.
const TokenPath = constants.DefaultTokenPath

const (
	maxPageSize     = 50
	tokenTTLSeconds = 3600
)

// Server serves the users API from memory.
type Server struct {
	store        *store
	engine       *gin.Engine
	resourcePath string
	token        string
	logger       adminapi.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithResourcePath mounts the users resource at path instead of "/auth".
func WithResourcePath(path string) Option {
	return func(s *Server) {
		path = "/" + strings.Trim(path, "/")
		if path != "/" {
			s.resourcePath = path
		}
	}
}

// WithToken requires "Authorization: Bearer <token>" on every users route and
// makes the token endpoint issue token.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithUUIDs makes the server assign UUID string ids instead of numbers.
func WithUUIDs() Option {
	return func(s *Server) {
		s.store.useUUID = true
	}
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Server) {
		s.store.cost = cost
	}
}

// WithLogger logs every request.
func WithLogger(logger adminapi.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server. Tests should pass WithBcryptCost(bcrypt.MinCost).
func New(opts ...Option) *Server {
	server := &Server{
		store:        newStore(false, bcrypt.DefaultCost),
		resourcePath: constants.DefaultResourcePath,
	}

	for _, opt := range opts {
		opt(server)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	if server.logger != nil {
		engine.Use(server.logRequests)
	}

	engine.POST(TokenPath, server.issueToken)

	users := engine.Group(server.resourcePath)
	users.Use(server.requireToken)
	{
		users.GET("", server.listUsers)
		users.POST("", server.createUser)
		users.GET("/:id", server.getUser)
		users.PATCH("/:id", server.updateUser)
		users.DELETE("/:id", server.deleteUser)
	}

	server.engine = engine

	return server
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Seed adds a user directly.
func (s *Server) Seed(req *adminapi.UserCreateRequest) (adminapi.User, error) {
	return s.store.create(req)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: constants.ShortHTTPTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()

	c.Next()

	s.logger.Info("mock API request", map[string]interface{}{
		"method":   c.Request.Method,
		"path":     c.Request.URL.Path,
		"status":   c.Writer.Status(),
		"duration": time.Since(start).String(),
	})
}

func (s *Server) requireToken(c *gin.Context) {
	if s.token == "" {
		c.Next()

		return
	}

	if c.GetHeader("Authorization") != "Bearer "+s.token {
		abortWithMessage(c, http.StatusUnauthorized, "unauthorized")

		return
	}

	c.Next()
}

func (s *Server) issueToken(c *gin.Context) {
	if c.PostForm("grant_type") != "password" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})

		return
	}

	_, err := s.store.authenticate(c.PostForm("username"), c.PostForm("password"))
	if err != nil || s.token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "invalid_grant",
			"error_description": errInvalidLogin.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": s.token,
		"token_type":   "bearer",
		"expires_in":   tokenTTLSeconds,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	query, fieldErrors := parseListQuery(c)
	if len(fieldErrors) > 0 {
		abortWithFieldErrors(c, fieldErrors)

		return
	}

	users, hasNextPage := s.store.list(query)

	data := make([]userResponse, 0, len(users))
	for _, user := range users {
		data = append(data, s.toResponse(user))
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        data,
		"hasNextPage": hasNextPage,
	})
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.store.get(adminapi.ID(c.Param("id")))
	if err != nil {
		abortWithMessage(c, http.StatusNotFound, err.Error())

		return
	}

	c.JSON(http.StatusOK, s.toResponse(user))
}

func (s *Server) createUser(c *gin.Context) {
	var req adminapi.UserCreateRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, "invalid request body")

		return
	}

	fieldErrors := map[string]string{}
	if !strings.Contains(req.Email, "@") {
		fieldErrors["email"] = "invalid"
	}

	if len(req.Password) < minPasswordLength {
		fieldErrors["password"] = "tooShort"
	}

	if len(fieldErrors) > 0 {
		abortWithFieldErrors(c, fieldErrors)

		return
	}

	user, err := s.store.create(&req)
	if err != nil {
		s.abortWithStoreError(c, err)

		return
	}

	c.JSON(http.StatusCreated, s.toResponse(user))
}

func (s *Server) updateUser(c *gin.Context) {
	var req adminapi.UserUpdateRequest

	err := c.ShouldBindJSON(&req)
	if err != nil {
		abortWithMessage(c, http.StatusBadRequest, "invalid request body")

		return
	}

	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		abortWithFieldErrors(c, map[string]string{"email": "invalid"})

		return
	}

	user, err := s.store.update(adminapi.ID(c.Param("id")), &req)
	if err != nil {
		s.abortWithStoreError(c, err)

		return
	}

	c.JSON(http.StatusOK, s.toResponse(user))
}

func (s *Server) deleteUser(c *gin.Context) {
	err := s.store.delete(adminapi.ID(c.Param("id")))
	if err != nil {
		s.abortWithStoreError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) abortWithStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errNotFound):
		abortWithMessage(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errEmailTaken):
		abortWithFieldErrors(c, map[string]string{"email": errEmailTaken.Error()})
	case errors.Is(err, errPasswordShort):
		abortWithFieldErrors(c, map[string]string{"password": "tooShort"})
	default:
		abortWithMessage(c, http.StatusInternalServerError, "internal error")
	}
}

func abortWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"status": status, "message": message})
}

func abortWithFieldErrors(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"status": http.StatusUnprocessableEntity,
		"errors": fields,
	})
}

// parseListQuery accepts both sort encodings: when "sort" carries a
// direction, "order" carries the field, and the other way round.
func parseListQuery(c *gin.Context) (listQuery, map[string]string) {
	fieldErrors := map[string]string{}
	query := listQuery{
		page:  adminapi.DefaultPage,
		limit: adminapi.DefaultPageSize,
		email: c.Query(adminapi.QueryKeyEmail),
	}

	if raw, ok := c.GetQuery(adminapi.QueryKeyPage); ok {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			fieldErrors["page"] = "mustBePositive"
		}

		query.page = page
	}

	if raw, ok := c.GetQuery(adminapi.QueryKeyLimit); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			fieldErrors["limit"] = "mustBePositive"
		}

		query.limit = min(limit, maxPageSize)
	}

	sortValue := c.Query(adminapi.QueryKeySort)
	orderValue := c.Query(adminapi.QueryKeyOrder)

	var field, direction string

	switch {
	case sortValue == "" && orderValue == "":
	case isDirection(sortValue):
		direction, field = sortValue, orderValue
	case isDirection(orderValue):
		field, direction = sortValue, orderValue
	default:
		fieldErrors["sort"] = "invalidDirection"
	}

	if field != "" && !sortFields[field] {
		fieldErrors["order"] = "invalidField"
	}

	query.sortField = field
	query.sortDesc = strings.EqualFold(direction, string(adminapi.SortDesc))

	return query, fieldErrors
}

type userResponse struct {
	ID        interface{}          `json:"id"`
	Email     string               `json:"email"`
	FirstName string               `json:"firstName"`
	LastName  string               `json:"lastName"`
	Photo     *adminapi.FileEntity `json:"photo"`
	Role      *adminapi.Role       `json:"role"`
	Provider  string               `json:"provider"`
	CreatedAt *time.Time           `json:"createdAt"`
	UpdatedAt *time.Time           `json:"updatedAt"`
	DeletedAt *time.Time           `json:"deletedAt"`
}

// toResponse renders numeric ids as JSON numbers.
func (s *Server) toResponse(user adminapi.User) userResponse {
	var id interface{} = user.ID.String()
	if numeric, err := strconv.Atoi(user.ID.String()); err == nil && !s.store.useUUID {
		id = numeric
	}

	return userResponse{
		ID:        id,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Photo:     user.Photo,
		Role:      user.Role,
		Provider:  user.Provider,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
		DeletedAt: user.DeletedAt,
	}
}
