package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/watermarker/internal/api/handlers/batch"
)

// Setup registers the batch API routes.
func Setup(h *batch.Handler) *ginext.Engine {
	r := ginext.New()

	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/batches", h.Create) // running a batch
	api.GET("/batches/:id", h.Get) // getting a batch summary by id
	api.GET("/jobs/:id", h.GetJob) // getting a job result by id

	return r
}
