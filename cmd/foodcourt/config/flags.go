package config

import (
	"errors"

	"github.com/caarlos0/env/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var Sugar zap.SugaredLogger

type ServerFlags struct {
	Address          string `env:"RUN_ADDRESS"`
	DBConnection     string `env:"DATABASE_URI"`
	GatewayAddress   string `env:"GATEWAY_ADDRESS"`
	GatewayKeyID     string `env:"GATEWAY_KEY_ID"`
	GatewayKeySecret string `env:"GATEWAY_KEY_SECRET"`
	PushWriteTimeout int    `env:"PUSH_WRITE_TIMEOUT"`
}

func Initialize() (*ServerFlags, error) {
	srvFlags := new(ServerFlags)
	// try to get vars from flags
	pflag.StringVarP(&srvFlags.Address, "addr", "a", "localhost:8080", "Net address host:port")
	pflag.StringVarP(&srvFlags.DBConnection, "databaseURI", "d", "user=postgres password=postgres host=localhost port=5432 dbname=postgres sslmode=disable", "Connection string to DB: user=<> password=<> host=<> port=<> dbname=<>")
	pflag.StringVarP(&srvFlags.GatewayAddress, "gatewayAddr", "g", "", "Base URL of the payment gateway API")
	pflag.StringVarP(&srvFlags.GatewayKeyID, "gatewayKey", "k", "", "Payment gateway key id")
	pflag.StringVarP(&srvFlags.GatewayKeySecret, "gatewaySecret", "s", "", "Payment gateway key secret, also used to verify payment signatures")
	pflag.IntVarP(&srvFlags.PushWriteTimeout, "pushTimeout", "t", 5, "Timeout in sec for a single push delivery before the connection is dropped")

	pflag.Parse()

	// try to get vars from env
	if err := env.Parse(srvFlags); err != nil {
		return nil, err
	}

	if srvFlags.GatewayKeySecret == "" {
		return nil, errors.New("gateway key secret is required")
	}

	Sugar.Infow(
		"Flags initialized",
		"RUN_ADDRESS", srvFlags.Address,
		"GATEWAY_ADDRESS", srvFlags.GatewayAddress,
		"PUSH_WRITE_TIMEOUT", srvFlags.PushWriteTimeout,
	)

	return srvFlags, nil
}
