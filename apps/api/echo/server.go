package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/matter"
	"github.com/acadio/practia/core/policy"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
)

type (
	ServerDeps struct {
		Conf   *core.Config
		Logger core.Logger

		UserSvc       *user.Service
		MatterSvc     *matter.Service
		CommissionSvc *commission.Service
		GroupSvc      *group.Service
		ProjectSvc    *project.Service
		RepoSvc       *repo.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwtCfg   middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		jwtCfg:   newJWTConfig(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.Conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.deps.Conf.Debug || s.deps.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, func() {
		s.shutdown <- syscall.SIGTERM
	})
	s.app.Debug = s.deps.Conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(s.jwtCfg)

	rel := newRelationshipReader(s.deps.CommissionSvc, s.deps.GroupSvc, s.deps.ProjectSvc, s.deps.RepoSvc)
	gate := newPolicyGate(policy.NewEvaluator(rel))

	registerUserAPI(v1, jwt, gate, s.deps.Conf, s.deps.UserSvc)
	registerMatterAPI(v1, jwt, gate, s.deps.MatterSvc)
	registerCommissionAPI(v1, jwt, gate, s.deps.CommissionSvc)
	registerGroupAPI(v1, jwt, gate, s.deps.GroupSvc, s.deps.ProjectSvc)
	registerProjectAPI(v1, jwt, gate, s.deps.ProjectSvc)
	registerRepoAPI(v1, jwt, gate, s.deps.RepoSvc)
}

func (s *server) Start() {
	s.errors <- s.app.Start(s.deps.Conf.Server.Address())
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
