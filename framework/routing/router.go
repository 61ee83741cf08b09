package routing

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
)

// Router wraps chi.Router with Laravel-style helpers. Controllers can be
// resolved from a container on every request.
type Router struct {
	mux   chi.Router
	log   zerolog.Logger
	app   *container.Container
	debug bool
}

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for request logs and resolution failures.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Router) { r.log = l }
}

// WithContainer sets the container controllers are resolved from. Without
// it the shared container from container.GetInstance is used.
func WithContainer(c *container.Container) Option {
	return func(r *Router) { r.app = c }
}

// WithDebug exposes resolution errors in 500 responses.
func WithDebug(debug bool) Option {
	return func(r *Router) { r.debug = debug }
}

// New creates a Router with sane defaults (RequestID, RealIP, request
// logging, Recoverer) and JSON 404/405 responses.
func New(opts ...Option) *Router {
	r := &Router{mux: chi.NewRouter(), log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}

	r.mux.Use(middleware.RequestID)
	r.mux.Use(middleware.RealIP)
	r.mux.Use(RequestLogger(r.log))
	r.mux.Use(middleware.Recoverer)

	r.mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).NotFound()
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).MethodNotAllowed()
	})
	return r
}

// RequestLogger logs one zerolog entry per request.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("method", req.Method).
					Str("path", req.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("elapsed", time.Since(start)).
					Str("request_id", middleware.GetReqID(req.Context())).
					Msg("http request")
			}()
			next.ServeHTTP(ww, req)
		})
	}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.HandlerFunc) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group. Laravel: Route::group([], fn)
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(r.with(mx))
	})
}

// Prefix creates a sub-router with a URL prefix. Laravel: Route::prefix('/api')
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(r.with(mx))
	})
}

func (r *Router) with(mx chi.Router) *Router {
	return &Router{mux: mx, log: r.log, app: r.app, debug: r.debug}
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Resource routes ──────────────────────────────────────────────────────────

// ResourceController handles the standard RESTful routes.
//
//	GET    /photos           → c.Index
//	POST   /photos           → c.Store
//	GET    /photos/{id}      → c.Show
//	PUT    /photos/{id}      → c.Update
//	DELETE /photos/{id}      → c.Destroy
type ResourceController interface {
	Index(w http.ResponseWriter, r *http.Request)
	Store(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Destroy(w http.ResponseWriter, r *http.Request)
}

// Resource registers the RESTful routes for an already-built controller.
func (r *Router) Resource(pattern string, c ResourceController) {
	r.mux.Get(pattern, c.Index)
	r.mux.Post(pattern, c.Store)
	r.mux.Get(pattern+"/{id}", c.Show)
	r.mux.Put(pattern+"/{id}", c.Update)
	r.mux.Patch(pattern+"/{id}", c.Update)
	r.mux.Delete(pattern+"/{id}", c.Destroy)
}

// ResourceFrom registers the RESTful routes for the controller registered
// in the container under name. The controller is created on every request,
// so its dependencies follow the container's bindings at that time.
//
//	router.ResourceFrom("/photos", "PhotoController")
func (r *Router) ResourceFrom(pattern, name string) {
	action := func(call func(ResourceController, http.ResponseWriter, *http.Request)) http.HandlerFunc {
		return Action(r, name, call)
	}
	r.mux.Get(pattern, action(ResourceController.Index))
	r.mux.Post(pattern, action(ResourceController.Store))
	r.mux.Get(pattern+"/{id}", action(ResourceController.Show))
	r.mux.Put(pattern+"/{id}", action(ResourceController.Update))
	r.mux.Patch(pattern+"/{id}", action(ResourceController.Update))
	r.mux.Delete(pattern+"/{id}", action(ResourceController.Destroy))
}

// Action returns a handler that creates name from the router's container
// and passes it to fn. A failed resolution answers 500.
//
//	router.Get("/avatar", routing.Action(router, "AvatarController", (*AvatarController).Show))
func Action[T any](r *Router, name string, fn func(T, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		ctrl, err := resolve[T](r, name)
		if err != nil {
			r.log.Error().Err(err).Str("type", name).Str("path", req.URL.Path).Msg("routing: controller resolution failed")
			gohttp.NewResponse(w).ResolutionError(err, r.debug)
			return
		}
		fn(ctrl, w, req)
	}
}

func resolve[T any](r *Router, name string) (T, error) {
	app := r.app
	if app == nil {
		var err error
		if app, err = container.GetInstance(); err != nil {
			var zero T
			return zero, err
		}
	}
	ctrl, err := container.Resolve[T](app, name)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("routing: %w", err)
	}
	return ctrl, nil
}

// ── Static files ─────────────────────────────────────────────────────────────

// Static serves a filesystem at the given prefix.
// e.g. router.Static("/public", "./public")
func (r *Router) Static(prefix, dir string) {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(prefix+"/*", func(w http.ResponseWriter, req *http.Request) {
		fs.ServeHTTP(w, req)
	})
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param, equivalent to $request->route('id')
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
