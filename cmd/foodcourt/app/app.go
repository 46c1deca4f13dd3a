package app

import (
	"context"
	"errors"
	"time"

	"github.com/kvvPro/foodcourt/cmd/foodcourt/config"
	"github.com/kvvPro/foodcourt/internal/gateway"
	"github.com/kvvPro/foodcourt/internal/keylock"
	"github.com/kvvPro/foodcourt/internal/push"
	"github.com/kvvPro/foodcourt/internal/storage"
	"github.com/kvvPro/foodcourt/internal/storage/postgres"
)

type Server struct {
	Address          string
	DBConnection     string
	GatewayAddress   string
	PushWriteTimeout int

	storage       storage.Storage
	gateway       *gateway.Client
	registry      *push.Registry
	dispatcher    *push.Dispatcher
	locks         *keylock.KeyLock
	gatewaySecret string
}

func NewServer(ctx context.Context, configs *config.ServerFlags) (*Server, error) {
	st, err := postgres.NewPSQLStorage(ctx, configs.DBConnection)
	if err != nil {
		return nil, errors.New("cannot create storage for server: " + err.Error())
	}

	registry := push.NewRegistry()

	return &Server{
		Address:          configs.Address,
		DBConnection:     configs.DBConnection,
		GatewayAddress:   configs.GatewayAddress,
		PushWriteTimeout: configs.PushWriteTimeout,
		storage:          st,
		gateway:          gateway.New(configs.GatewayAddress, configs.GatewayKeyID, configs.GatewayKeySecret),
		registry:         registry,
		dispatcher:       push.NewDispatcher(registry, time.Duration(configs.PushWriteTimeout)*time.Second, &Sugar),
		locks:            keylock.New(),
		gatewaySecret:    configs.GatewayKeySecret,
	}, nil
}

func (srv *Server) quit(ctx context.Context) {
	srv.registry.Close()
	srv.storage.Quit(ctx)
}

func (srv *Server) Ping(ctx context.Context) error {
	return srv.storage.Ping(ctx)
}
