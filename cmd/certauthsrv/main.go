// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gorilla/handlers"
	"github.com/juju/gnuflag"
	"github.com/juju/loggo"
	"gopkg.in/errgo.v1"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/canonical/certauth/config"
	"github.com/canonical/certauth/idp"
	_ "github.com/canonical/certauth/idp/clientcert"
	"github.com/canonical/certauth/internal/debugstatus"
	"github.com/canonical/certauth/internal/server"
	_ "github.com/canonical/certauth/store/memstore"
	_ "github.com/canonical/certauth/store/sqlstore"
)

var logger = loggo.GetLogger("certauthsrv")

// version is set at link time.
var version = "dev"

func main() {
	gnuflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <config path>\n", filepath.Base(os.Args[0]))
		gnuflag.PrintDefaults()
		exit(2)
	}
	gnuflag.Parse(true)
	if gnuflag.NArg() != 1 {
		gnuflag.Usage()
	}
	confPath := gnuflag.Arg(0)
	conf, err := config.Read(confPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "STOP cannot read configuration: %v\n", err)
		exit(2)
	}
	if err := loggo.ConfigureLoggers(conf.LoggingConfig); err != nil {
		fmt.Fprintf(os.Stderr, "STOP cannot configure loggers: %v", err)
		exit(2)
	}
	if err := serve(conf); err != nil {
		fmt.Fprintf(os.Stderr, "STOP %v\n", err)
		exit(1)
	}
	fmt.Fprintln(os.Stderr, "STOP no error, weirdly")
	exit(0)
}

// exit calls os.Exit, first sleeping for a bit to work
// around an outrageous systemd bug which causes
// final output lines to be lost if we exit immediately.
// See https://github.com/systemd/systemd/issues/2913
//
// Note: exit status 2 implies we won't restart the service.
func exit(code int) {
	time.Sleep(200 * time.Millisecond)
	os.Exit(code)
}

// serve starts the certificate authentication server.
func serve(conf *config.Config) error {
	logger.Infof("connecting to the user store")
	backend, err := conf.Storage.NewBackend()
	if err != nil {
		return errgo.Notef(err, "cannot connect to store")
	}
	defer backend.Close()

	authenticators := make([]idp.Authenticator, len(conf.Authenticators))
	for i, a := range conf.Authenticators {
		authenticators[i] = a.Authenticator
	}

	logger.Infof("setting up the server")
	srv, err := server.New(context.Background(), server.Params{
		Store:          backend.Store(),
		Authenticators: authenticators,
		Version: debugstatus.Version{
			Version: version,
		},
	})
	if err != nil {
		return errgo.Notef(err, "cannot create new server at %q", conf.APIAddr)
	}
	defer srv.Close()

	// Cast the Server to an http.Handler so that it can be
	// optionally wrapped by the logging handler below.
	var h http.Handler = srv

	if conf.AccessLog != "" {
		accesslog := &lumberjack.Logger{
			Filename:   conf.AccessLog,
			MaxSize:    500, // megabytes
			MaxBackups: 3,
			MaxAge:     28, //days
		}
		h = handlers.CombinedLoggingHandler(accesslog, h)
	}
	logger.Infof("starting the certificate authentication server")

	httpServer := &http.Server{
		Addr:    conf.APIAddr,
		Handler: h,
	}
	fmt.Println("START")
	return httpServer.ListenAndServe()
}
