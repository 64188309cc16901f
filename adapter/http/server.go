// Package rest HTTP introspection of the line server
package rest

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/logger"
)

type Server struct {
	cfg           *Config
	log           *logger.Logger
	serverUseCase ServerUseCase
	router        *gin.Engine
	srv           *http.Server
}

type Config struct {
	Host string
	Port int
}

type ServerUseCase interface {
	GetClients() []*entity.ClientInfo
}

type clientsResponse struct {
	Count   int                      `json:"count"`
	Clients []map[string]interface{} `json:"clients"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(cfg *Config, log *logger.Logger, serverUseCase ServerUseCase) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:           cfg,
		log:           log.Duplicate(log.With().Str("layer", "rest").Logger()),
		serverUseCase: serverUseCase,
		router:        gin.New(),
	}

	return s, s.init()
}

func (s *Server) init() error {
	s.router.Use(gin.Recovery())
	s.router.GET("/api/v1/clients", s.handlerClients)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.srv = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler: s.router,
	}

	return nil
}

func (s *Server) Start() {
	go func() {
		s.log.Info().
			Str("host", s.cfg.Host).
			Int("port", s.cfg.Port).
			Msg("starting HTTP server")

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("failed to start HTTP server")
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// handlerClients returns the connected clients. The optional fields query
// parameter is a comma separated list of keys to keep, e.g. ?fields=id,sum
func (s *Server) handlerClients(ctx *gin.Context) {
	var fields []string
	if f := ctx.Query("fields"); f != "" {
		fields = strings.Split(f, ",")
		for _, name := range fields {
			if !slices.Contains(clientFields, name) {
				ctx.JSON(http.StatusBadRequest, &errorResponse{Error: fmt.Sprintf("unknown field %q", name)})
				return
			}
		}
	}

	info := s.serverUseCase.GetClients()

	resp := &clientsResponse{
		Count:   len(info),
		Clients: make([]map[string]interface{}, 0, len(info)),
	}

	for _, c := range info {
		m, err := clientToMap(c, fields)
		if err != nil {
			s.log.Error().Err(err).Str("addr", c.ID).Msg("failed to map client")
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		resp.Clients = append(resp.Clients, m)
	}

	ctx.JSON(http.StatusOK, resp)
}

// clientFields keys of entity.ClientInfo as named by its mapstructure tags
var clientFields = []string{"id", "session_id", "sum", "connected_at"}

func clientToMap(c *entity.ClientInfo, fields []string) (map[string]interface{}, error) {
	m := make(map[string]interface{}, len(clientFields))
	if err := mapstructure.Decode(c, &m); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return m, nil
	}
	for k := range m {
		if !slices.Contains(fields, k) {
			delete(m, k)
		}
	}
	return m, nil
}
