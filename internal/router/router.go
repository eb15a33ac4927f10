// Package router maps requests onto the server's fixed set of routes.
package router

import (
	"strings"

	"dqx0.com/go/tinyhttpd/httpx"
	"dqx0.com/go/tinyhttpd/internal/filestore"
	"dqx0.com/go/tinyhttpd/internal/obs"
)

const (
	echoPrefix  = "/echo/"
	filesPrefix = "/files/"

	textPlain   = "text/plain"
	octetStream = "application/octet-stream"
)

type route struct {
	name   string
	match  func(path string) bool
	handle func(*httpx.Request) *httpx.Response
}

// Router implements httpx.Handler. Routes are tried in order and the
// first match wins; overlapping prefixes depend on that order.
type Router struct {
	store  filestore.Store
	log    obs.Logger
	routes []route
}

// New builds the route table. A nil store makes every /files/ request a 404.
func New(store filestore.Store, logger obs.Logger) *Router {
	rt := &Router{store: store, log: obs.OrNop(logger)}
	rt.routes = []route{
		{"root", exact("/"), rt.root},
		{"user-agent", exact("/user-agent"), rt.userAgent},
		{"echo", prefix(echoPrefix), rt.echo},
		{"files", prefix(filesPrefix), rt.files},
	}
	return rt
}

func (rt *Router) ServeHTTP(r *httpx.Request) *httpx.Response {
	for _, rr := range rt.routes {
		if rr.match(r.Path) {
			return rr.handle(r)
		}
	}
	return httpx.NotFound()
}

// Route returns the name of the route path resolves to, or "" for none.
func (rt *Router) Route(path string) string {
	for _, rr := range rt.routes {
		if rr.match(path) {
			return rr.name
		}
	}
	return ""
}

func exact(p string) func(string) bool {
	return func(path string) bool { return path == p }
}

// prefix matches p followed by at least one more byte.
func prefix(p string) func(string) bool {
	return func(path string) bool { return len(path) > len(p) && strings.HasPrefix(path, p) }
}

func (rt *Router) root(*httpx.Request) *httpx.Response {
	return &httpx.Response{StatusCode: 200}
}

func (rt *Router) userAgent(r *httpx.Request) *httpx.Response {
	return &httpx.Response{
		StatusCode:  200,
		ContentType: textPlain,
		Body:        []byte(r.Header.Get("User-Agent")),
	}
}

func (rt *Router) echo(r *httpx.Request) *httpx.Response {
	res := &httpx.Response{
		StatusCode:  200,
		ContentType: textPlain,
		Body:        []byte(r.Path[len(echoPrefix):]),
	}
	if err := httpx.EncodeGzip(r, res); err != nil {
		rt.log.Logf(obs.Warn, "conn=%s gzip %s: %v", r.ID, r.Path, err)
	}
	return res
}

func (rt *Router) files(r *httpx.Request) *httpx.Response {
	name := r.Path[len(filesPrefix):]
	if rt.store == nil {
		return httpx.NotFound()
	}
	if r.Method == "GET" {
		data, err := rt.store.Read(name)
		if err != nil {
			rt.log.Logf(obs.Debug, "conn=%s read %q: %v", r.ID, name, err)
			return httpx.NotFound()
		}
		return &httpx.Response{StatusCode: 200, ContentType: octetStream, Body: data}
	}
	// Any other method is an upload. A failed write still answers 201.
	if err := rt.store.Write(name, r.Body); err != nil {
		rt.log.Logf(obs.Warn, "conn=%s write %q: %v", r.ID, name, err)
	}
	return &httpx.Response{StatusCode: 201}
}
