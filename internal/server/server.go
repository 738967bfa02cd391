package server

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// Options configures the HTTP surface.
type Options struct {
	MaxBodyBytes     int64
	MaxNestingDepth  int
	CompressionLevel int
	Logger           zerolog.Logger
}

type HTTPServer struct {
	Echo   *echo.Echo
	opts   Options
	logger zerolog.Logger
}

type CustomValidator struct {
	validator *validator.Validate
}

// New wires routes and middleware. It does not listen.
func New(opts Options) *HTTPServer {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 20
	}
	s := &HTTPServer{
		Echo:   echo.New(),
		opts:   opts,
		logger: opts.Logger,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true

	s.Echo.Use(s.CreateReqContext)
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)

	v1 := s.Echo.Group("/v1")
	v1.POST("/encode", ccHandler(s.EncodeHandler))
	v1.POST("/decode", ccHandler(s.DecodeHandler))
	v1.POST("/schema", ccHandler(s.SchemaHandler))

	return s
}

// Serve accepts h2c and HTTP/1.1 connections on listener until Shutdown.
func (s *HTTPServer) Serve(listener net.Listener) error {
	s.Echo.Listener = listener
	s.logger.Info().Msg("starting h2c server on " + listener.Addr().String())
	err := s.Echo.StartH2CServer("", &http2.Server{})
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	return err
}
