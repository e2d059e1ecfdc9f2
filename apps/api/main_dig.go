package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/dig"

	dig_container "github.com/Prajjwal2051/Viewly-sub002/apps/api/di/dig"
	echoapi "github.com/Prajjwal2051/Viewly-sub002/apps/api/echo"
	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
	"github.com/Prajjwal2051/Viewly-sub002/storage"
)

type apiDeps struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	DBLogger   core.Logger `name:"dbLogger"`
	Repos      *storage.Repositories
	Validate   *validator.Validate
	Translator ut.Translator
	Server     *echoapi.Server
}

func startWithDig() {
	c := dig_container.New()
	must(c.Invoke(serve))
}

func serve(d apiDeps) {
	d.Logger.Info(fmt.Sprintf("Viewly API starting : version %q, database %q, media %q", d.Conf.Build, d.Conf.Database.Engine, d.Conf.Media.Backend))
	d.prepare()
	defer d.closeStorage()
	defer d.Logger.Info("Viewly API stopped")

	publishVars(d.Conf, time.Now())
	go serveDebug(d.Conf.Server.DebugHost, d.Logger)

	go func() {
		d.Logger.Info(fmt.Sprintf("API listening on %s", d.Conf.Server.Address))
		d.Server.Start()
	}()
	d.awaitShutdown()
}

// prepare registers the validators and loads the email templates & the password blocklist.
func (d apiDeps) prepare() {
	core.InitValidators(d.Validate, d.Translator)
	user.InitValidators(d.Validate, d.Translator)
	core.ParseEmailTemplates(d.Conf, d.Logger)
	user.LoadCommonPasswords(d.Logger)
}

func (d apiDeps) closeStorage() {
	if err := d.Repos.Close(context.Background()); err != nil {
		d.DBLogger.Fatal(fmt.Sprintf("closing %s storage", d.Conf.Database.Engine), err)
	}
}

// publishVars exposes the deployment under /debug/vars.
func publishVars(conf *core.Config, startedAt time.Time) {
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Engine)
	expvar.NewString("media").Set(conf.Media.Backend)
	expvar.Publish("uptime", expvar.Func(func() any {
		return time.Since(startedAt).Round(time.Second).String()
	}))
}

// serveDebug serves /debug/pprof & /debug/vars, both registered on the default mux.
func serveDebug(host string, logger core.Logger) {
	if err := http.ListenAndServe(host, http.DefaultServeMux); err != nil {
		logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
	}
}

func (d apiDeps) awaitShutdown() {
	select {
	case err := <-d.Server.Errors():
		d.Logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-d.Server.ShutdownSignal():
		d.Logger.Info(fmt.Sprintf("%v: draining requests for up to %s", sig, d.Conf.Server.ShutdownTimeout))

		ctx, cancel := context.WithTimeout(context.Background(), d.Conf.Server.ShutdownTimeout)
		defer cancel()

		if err := d.Server.Shutdown(ctx); err != nil {
			d.Logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = d.Server.Close(); err != nil {
				d.Logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
