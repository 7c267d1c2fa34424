package commands

import (
	"context"
	"fmt"

	"github.com/smartbuspass/backend/config"
	"github.com/smartbuspass/backend/data"
	"github.com/smartbuspass/backend/logging/logger"
	"github.com/smartbuspass/backend/messaging/email"
	"github.com/smartbuspass/backend/service"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	conf     *config.Config
	logger   *logger.Logger
	data     *data.Data
	sessions *service.SessionService
	verify   *service.VerifyService
	approval *service.ApprovalService
}

// bootstrap loads configuration, initializes logging, connects storage,
// and builds the service graph. The returned cleanup releases all of it.
func bootstrap(configFile string) (*app, func(), error) {
	conf, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCleanup, err := logger.New(conf.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.StdLogger()

	d, err := data.New(conf.Data.MongoDB, log)
	if err != nil {
		logCleanup()
		return nil, nil, err
	}

	sessions := service.NewSessionService(d.PrincipalRepo, conf.Session.TTL, log)
	verify := service.NewVerifyService(d.PrincipalRepo, d.BusRepo, d.VerificationRepo, conf.Verify, log)

	var sender email.Sender
	if conf.Email.Provider != "" {
		sender, err = email.NewSender(conf.Email)
		if err != nil {
			log.Warn(context.Background(), "email sender unavailable, notifications disabled", "error", err)
		}
	}
	notifier := service.NewNotifier(sender, log)
	approval := service.NewApprovalService(d.PrincipalRepo, notifier, conf.Verify, log)

	cleanup := func() {
		if err := d.Close(); err != nil {
			log.Error(context.Background(), "failed to close storage", "error", err)
		}
		logCleanup()
	}

	return &app{
		conf:     conf,
		logger:   log,
		data:     d,
		sessions: sessions,
		verify:   verify,
		approval: approval,
	}, cleanup, nil
}
