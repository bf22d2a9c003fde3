package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupRoutes injects the books collection endpoints. Paths keep their
// trailing slash as the remote api does.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *Middlewares) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.NotFound = api.NotFound()
	router.GlobalOPTIONS = api.Preflight()
	router.GET("/status", m.Chain(api.Status))
	router.GET(BooksPath, m.Chain(api.GetAllBooks))
	router.POST(BooksPath, m.Chain(api.CreateBook))
	router.GET(BooksPath+":id/", m.Chain(api.GetOneBook))
	router.PUT(BooksPath+":id/", m.Chain(api.UpdateBook))
	router.DELETE(BooksPath+":id/", m.Chain(api.DeleteOneBook))

	if api.config != nil && api.config.Stub.ProfilerEnable {
		router.GET(OpsPprofPath+"*name", api.OpsMiddlewaresStack().Chain(api.GetProfile))
	}
	return router
}
