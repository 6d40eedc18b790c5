// Package api serves read-only verification endpoints over HTTP so that
// third parties can check a diploma without a Fabric identity of their own.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/model"
	"github.com/HamzaTakiX/Blockchain-project/session"

	"github.com/google/uuid"
	"github.com/hyperledger/fabric/common/flogging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var logger = flogging.MustGetLogger("diplomacert.api")

// Registry is the read side of a session.Session.
type Registry interface {
	Verify(ctx context.Context, address string) (bool, error)
	GetDiploma(ctx context.Context, address string) (*model.DiplomaRecord, error)
	GetDiplomaWithMetadata(ctx context.Context, address string) (*session.DiplomaView, error)
	StudentAddresses(ctx context.Context) ([]string, error)
	TotalIssued(ctx context.Context) (int, error)
	Admin(ctx context.Context) (string, error)
	Gateway() artifact.Gateway
}

type Args struct {
	Addr     string
	Version  string
	Registry Registry
}

type Server struct {
	echo     *echo.Echo
	httpd    *http.Server
	registry Registry
	version  string
}

func New(args Args) (*Server, error) {
	if args.Registry == nil {
		return nil, errors.New("api: registry is required")
	}
	if args.Addr == "" {
		args.Addr = ":8090"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
	}))

	s := &Server{
		echo:     e,
		httpd:    &http.Server{Addr: args.Addr, Handler: e, ReadHeaderTimeout: 10 * time.Second},
		registry: args.Registry,
		version:  args.Version,
	}
	s.addRoutes()
	return s, nil
}

func (s *Server) addRoutes() {
	s.echo.GET("/healthz", s.handleHealth)

	v1 := s.echo.Group("/v1")
	v1.GET("/diplomas", s.handleListDiplomas)
	v1.GET("/diplomas/:address", s.handleGetDiploma)
	v1.GET("/diplomas/:address/verify", s.handleVerifyDiploma)
	v1.GET("/stats", s.handleStats)
	v1.GET("/admin", s.handleAdmin)
	v1.GET("/artifacts/:cid", s.handleResolveArtifact)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Verification API listening on %s", s.httpd.Addr)
		if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Infof("Shutting down verification API")
	return s.httpd.Shutdown(shutdownCtx)
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(e echo.Context) error {
		start := time.Now()
		err := next(e)
		if err != nil {
			e.Error(err)
		}
		req := e.Request()
		logger.Debugf("%s %s -> %d in %s (request %s)", req.Method, req.URL.Path, e.Response().Status,
			time.Since(start), e.Response().Header().Get(echo.HeaderXRequestID))
		return nil
	}
}
