// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package server implements the HTTP host that authenticates requests
// with the configured authenticators and serves the session endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/juju/loggo"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/errgo.v1"
	"gopkg.in/httprequest.v1"

	"github.com/canonical/certauth/idp"
	"github.com/canonical/certauth/internal/debugstatus"
	"github.com/canonical/certauth/internal/monitoring"
	"github.com/canonical/certauth/params"
	"github.com/canonical/certauth/session"
	"github.com/canonical/certauth/store"
)

var logger = loggo.GetLogger("certauth.internal.server")

// Params contains configuration parameters for a server.
type Params struct {
	// Store holds the user store.
	Store store.Store

	// Authenticators holds the authenticators that are tried, in
	// order, for each request. The first to establish an identity
	// is used.
	Authenticators []idp.Authenticator

	// Version holds the version served from /debug/info.
	Version debugstatus.Version
}

// Server serves the session endpoints.
type Server struct {
	router         *httprouter.Router
	authenticators []idp.Authenticator
	storeCollector monitoring.StoreCollector
}

// New returns a new Server. Every authenticator is initialised before
// New returns.
func New(ctx context.Context, p Params) (*Server, error) {
	if p.Store == nil {
		return nil, errgo.Newf("no store specified")
	}
	if len(p.Authenticators) == 0 {
		return nil, errgo.Newf("no authenticators specified")
	}
	for _, a := range p.Authenticators {
		if err := a.Init(ctx, idp.InitParams{Store: p.Store}); err != nil {
			return nil, errgo.Notef(err, "cannot initialise authenticator %s", a.Name())
		}
	}

	storeCollector := monitoring.StoreCollector{Store: p.Store}
	prometheus.Register(storeCollector)

	srv := &Server{
		router:         httprouter.New(),
		authenticators: p.Authenticators,
		storeCollector: storeCollector,
	}
	srv.router.RedirectTrailingSlash = false
	srv.router.RedirectFixedPath = false
	srv.router.NotFound = http.HandlerFunc(notFound)
	srv.router.MethodNotAllowed = http.HandlerFunc(methodNotAllowed)

	metrics := promhttp.Handler()
	srv.handle("GET", "/metrics", func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		metrics.ServeHTTP(w, req)
	})
	handlers := ReqServer.Handlers(func(hp httprequest.Params) (apiHandler, context.Context, error) {
		return apiHandler{}, hp.Context, nil
	})
	debugHandler := &debugstatus.Handler{
		Check: func(ctx context.Context) map[string]debugstatus.CheckResult {
			return debugstatus.Check(ctx, debugstatus.ServerStartTime, debugstatus.StoreUsers(p.Store))
		},
		Version: p.Version,
	}
	handlers = append(handlers, ReqServer.Handlers(func(hp httprequest.Params) (*debugstatus.Handler, context.Context, error) {
		return debugHandler, hp.Context, nil
	})...)
	for _, h := range handlers {
		srv.handle(h.Method, h.Path, h.Handle)
	}
	return srv, nil
}

// handle registers h with the router, recording the duration of each
// request.
func (srv *Server) handle(method, path string, h httprouter.Handle) {
	srv.router.Handle(method, path, func(w http.ResponseWriter, req *http.Request, p httprouter.Params) {
		defer monitoring.NewRequest(path).ObserveMetric()
		h(w, req, p)
	})
}

// ServeHTTP implements http.Handler. The request is passed to each
// authenticator in turn, the first identity established being attached
// to the request context.
func (srv *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	defer func() {
		if v := recover(); v != nil {
			logger.Errorf("PANIC!: %v\n%s", v, debug.Stack())
			httprequest.WriteJSON(w, http.StatusInternalServerError, params.Error{
				Code:    "panic",
				Message: fmt.Sprintf("%v", v),
			})
		}
	}()
	srv.router.ServeHTTP(w, srv.authenticate(req))
}

func (srv *Server) authenticate(req *http.Request) *http.Request {
	ctx := req.Context()
	for _, a := range srv.authenticators {
		id, ok := a.TrustExternal(ctx, req)
		if !ok {
			continue
		}
		logger.Debugf("%s authenticated %s", a.Name(), id.LoginID)
		return req.WithContext(session.ContextWithIdentity(ctx, id))
	}
	return req
}

// Close releases any resources held by the Server.
func (srv *Server) Close() {
	logger.Debugf("Closing Server")
	prometheus.Unregister(srv.storeCollector)
}

// notFound is the handler that is called when a handler cannot be found
// for the requested endpoint.
func notFound(w http.ResponseWriter, req *http.Request) {
	WriteError(req.Context(), w, errgo.WithCausef(nil, params.ErrNotFound, "not found: %s", req.URL.Path))
}

// methodNotAllowed is the handler that is called when a handler cannot
// be found for the requested endpoint with the request method.
func methodNotAllowed(w http.ResponseWriter, req *http.Request) {
	WriteError(req.Context(), w, errgo.WithCausef(nil, params.ErrMethodNotAllowed, "%s not allowed for %s", req.Method, req.URL.Path))
}
