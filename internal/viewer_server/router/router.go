package router

import (
	"context"
	"github.com/reweave/reweave/internal/viewer_server/handler"
	"github.com/reweave/reweave/internal/viewer_server/service/runstore"
	"github.com/reweave/reweave/web"
	"go.uber.org/zap"
	"net/http"
)

import "github.com/gorilla/mux"

func CreateRouter(
	ctx context.Context,
	rs runstore.RunStore,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle(
		"/runs", handler.RunsHandler(
			ctx,
			rs,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/traces", handler.TracesHandler(
			ctx,
			rs,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/files", handler.FilesHandler(
			ctx,
			rs,
			logger,
		),
	).Methods("GET")

	r.Handle(
		"/source", handler.SourceHandler(
			ctx,
			rs,
			logger,
		),
	).Methods("GET")

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(web.Index)
	}).Methods("GET")

	return r
}
