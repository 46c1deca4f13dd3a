package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kvvPro/foodcourt/cmd/foodcourt/app"
	"github.com/kvvPro/foodcourt/cmd/foodcourt/config"

	"go.uber.org/zap"
)

func main() {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	app.Sugar = *logger.Sugar()
	config.Sugar = *logger.Sugar()

	srvFlags, err := config.Initialize()
	if err != nil {
		app.Sugar.Fatalw(err.Error(), "event", "get config")
	}

	ctx := context.Background()

	srv, err := app.NewServer(ctx, srvFlags)
	if err != nil {
		app.Sugar.Fatalw(err.Error(), "event", "create server")
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)
	httpSrv := srv.StartServer(ctx, wg, srvFlags)

	sigQuit := <-shutdown
	app.Sugar.Infoln("Server shutdown by signal: ", sigQuit)

	if err := httpSrv.Shutdown(ctx); err != nil {
		app.Sugar.Errorln("shutdown error: ", err.Error())
	}
	wg.Wait()
}
