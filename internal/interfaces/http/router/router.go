// Package router assembles the HTTP route tree.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar mounts a handler's routes onto the API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and wires them under a versioned prefix.
// Protected registrars sit behind the auth middleware; public ones
// (sign-in, gateway webhooks) do not.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	authMW     gin.HandlerFunc
	public     []RouteRegistrar
	protected  []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion overrides the version prefix, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuthMiddleware guards protected registrars with the middleware
func WithAuthMiddleware(mw gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.authMW = mw
	}
}

// NewRouter creates a Router around a gin engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterPublic queues a registrar mounted without authentication
func (r *Router) RegisterPublic(registrar RouteRegistrar) *Router {
	r.public = append(r.public, registrar)
	return r
}

// Register queues a registrar mounted behind the auth middleware
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.protected = append(r.protected, registrar)
	return r
}

// Setup mounts the health probe and every registered handler
func (r *Router) Setup() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.public {
		registrar.RegisterRoutes(api)
	}

	authed := api
	if r.authMW != nil {
		authed = api.Group("", r.authMW)
	}
	for _, registrar := range r.protected {
		registrar.RegisterRoutes(authed)
	}
}
