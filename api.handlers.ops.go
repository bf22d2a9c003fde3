package main

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// OpsPprofPath prefixes the runtime profiles of the stub process.
const OpsPprofPath = "/ops/debug/pprof/"

// OpsMiddlewaresStack returns the chain applied to ops endpoints. Profiles
// may run longer than a books request so no timeout is applied.
func (api *APIHandler) OpsMiddlewaresStack() *Middlewares {
	return &Middlewares{
		api.PanicRecoveryMiddleware,
		api.RequestIDMiddleware,
		api.CoreMiddleware,
	}
}

// GetProfile serves the profile named after the ops prefix, or the index.
func (api *APIHandler) GetProfile(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch name := strings.Trim(ps.ByName("name"), "/"); name {
	case "":
		pprof.Index(w, r)
	case "profile":
		pprof.Profile(w, r)
	case "trace":
		pprof.Trace(w, r)
	case "symbol":
		pprof.Symbol(w, r)
	case "cmdline":
		pprof.Cmdline(w, r)
	default:
		pprof.Handler(name).ServeHTTP(w, r)
	}
}
