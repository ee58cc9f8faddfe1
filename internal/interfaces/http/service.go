package httpinterface

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/interfaces"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

type ServiceOpts struct {
	Port       int
	AuthSecret string
	NoAuth     bool

	ExchangeSvc application.ExchangeService
	PermitSvc   application.PermitService
	OperatorSvc application.OperatorService
	PubSubSvc   application.PubSubService
}

func (o ServiceOpts) validate() error {
	if o.Port <= 0 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if !o.NoAuth && len(o.AuthSecret) <= 0 {
		return fmt.Errorf("missing auth secret")
	}
	if o.ExchangeSvc == nil {
		return fmt.Errorf("missing exchange service")
	}
	if o.PermitSvc == nil {
		return fmt.Errorf("missing permit service")
	}
	if o.OperatorSvc == nil {
		return fmt.Errorf("missing operator service")
	}
	if o.PubSubSvc == nil {
		return fmt.Errorf("missing pubsub service")
	}
	return Validate()
}

func (o ServiceOpts) address() string {
	return fmt.Sprintf(":%d", o.Port)
}

type service struct {
	opts   ServiceOpts
	server *http.Server
}

// NewService returns the http interface of the daemon.
func NewService(opts ServiceOpts) (interfaces.Service, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("invalid opts: %s", err)
	}
	if log.GetLevel() < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              opts.address(),
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &service{opts, server}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}

	go func() {
		if err := s.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("http server stopped unexpectedly")
		}
	}()

	if s.opts.NoAuth {
		log.Warn("http interface has authentication disabled")
	}
	log.Infof("http interface is listening on %s", s.server.Addr)
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("failed to gracefully stop http interface")
		return
	}
	log.Info("stopped http interface")
}
