package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const serverName = "HTTP API"

// Server exposes the link-group engine over HTTP.
type Server struct {
	echo    *echo.Echo
	address string
	port    string
}

type Config struct {
	Address string
	Port    string
	Handler *Handler
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Port == "" {
		errGrp = append(errGrp, errors.New("port is required"))
	}
	if c.Handler == nil {
		errGrp = append(errGrp, errors.New("handler is required"))
	}
	return errors.Join(errGrp...)
}

// New builds the HTTP server and registers all routes.
func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	cfg.Handler.RegisterRoutes(e)

	return &Server{
		echo:    e,
		address: cfg.Address,
		port:    cfg.Port,
	}, nil
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	err := s.echo.Start(net.JoinHostPort(s.address, s.port))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}

func (s *Server) Name() string {
	return serverName
}
