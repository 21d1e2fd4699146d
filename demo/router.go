// Package demo is a small routing Handler that makes byteengine runnable
// end to end: exact-match and :param routes, static file serving, and
// JSON/form body decoding, adapted from the teacher's map-based router onto
// the engine's io.Reader/io.Writer Request/Response types.
package demo

import (
	"encoding/json"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codetesla51/byteengine/server"
)

// RouteHandler handles one matched request, with params extracted from any
// :name segments in the pattern it matched.
type RouteHandler func(req *server.Request, resp *server.Response, params map[string]string)

// Router dispatches requests by method+path, falling back to static files
// served from StaticDir, and finally a 404.
type Router struct {
	mu     sync.RWMutex
	routes map[string]map[string]RouteHandler

	// StaticDir is the root directory static files are served from; "" disables
	// static serving. Matches the teacher's "pages" convention.
	StaticDir string

	// NotFound is called when nothing matches; defaults to a plain 404.
	NotFound RouteHandler
}

// NewRouter returns a Router with static serving under dir ("" to disable).
func NewRouter(dir string) *Router {
	return &Router{
		routes:    make(map[string]map[string]RouteHandler),
		StaticDir: dir,
		NotFound:  serveNotFound,
	}
}

// Register adds a route handler for method and pattern ("/users/:id").
func (r *Router) Register(method, pattern string, handler RouteHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.routes[method] == nil {
		r.routes[method] = make(map[string]RouteHandler)
	}
	r.routes[method][pattern] = handler
}

// Serve implements server.Handler.
func (r *Router) Serve(req *server.Request, resp *server.Response) {
	method := req.MethodString()
	cleanPath := req.Path()

	if handler, params := r.match(method, cleanPath); handler != nil {
		handler(req, resp, params)
		return
	}

	if r.StaticDir != "" && (method == "GET" || method == "HEAD") {
		if served := r.serveStatic(cleanPath, resp); served {
			return
		}
	}

	r.NotFound(req, resp, nil)
}

// match looks up an exact route first, then falls back to :param pattern
// matching — the teacher's "exact match (faster), then pattern match" order.
func (r *Router) match(method, cleanPath string) (RouteHandler, map[string]string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methodRoutes, ok := r.routes[method]
	if !ok {
		return nil, nil
	}
	if h, ok := methodRoutes[cleanPath]; ok {
		return h, map[string]string{}
	}
	for pattern, h := range methodRoutes {
		if params, matched := matchPattern(cleanPath, pattern); matched {
			return h, params
		}
	}
	return nil, nil
}

// matchPattern compares a request path against a route pattern segment by
// segment, binding ":name" segments as params.
func matchPattern(requestPath, pattern string) (map[string]string, bool) {
	reqParts := strings.Split(strings.Trim(requestPath, "/"), "/")
	patParts := strings.Split(strings.Trim(pattern, "/"), "/")
	if len(reqParts) != len(patParts) {
		return nil, false
	}
	params := make(map[string]string)
	for i, p := range patParts {
		if strings.HasPrefix(p, ":") {
			params[p[1:]] = reqParts[i]
			continue
		}
		if p != reqParts[i] {
			return nil, false
		}
	}
	return params, true
}

func serveNotFound(req *server.Request, resp *server.Response, _ map[string]string) {
	body := []byte("404 not found\n")
	resp.SetStatus(404, "Not Found")
	resp.SetHeader("content-type", "text/plain; charset=utf-8")
	resp.ContentLength = int64(len(body))
	resp.Write(body)
}

// ReadJSON decodes the request body as JSON into a string-keyed map, the
// same loose shape the teacher's parseJSONBodyFromBytes produced.
func ReadJSON(req *server.Request) (map[string]any, error) {
	var v map[string]any
	dec := json.NewDecoder(req)
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// ReadForm decodes an application/x-www-form-urlencoded body into a
// string-keyed map.
func ReadForm(req *server.Request) (map[string]string, error) {
	body, err := io.ReadAll(req)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for _, pair := range strings.Split(string(body), "&") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k, err := url.QueryUnescape(kv[0])
		if err != nil {
			k = kv[0]
		}
		v, err := url.QueryUnescape(kv[1])
		if err != nil {
			v = kv[1]
		}
		result[k] = v
	}
	return result, nil
}

// QueryValues parses the request's raw query string into a string-keyed map
// (first value wins per key, matching the teacher's flat key/value model).
func QueryValues(req *server.Request) map[string]string {
	result := make(map[string]string)
	raw := req.Query()
	if raw == "" {
		return result
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k, err := url.QueryUnescape(kv[0])
		if err != nil {
			k = kv[0]
		}
		v, err := url.QueryUnescape(kv[1])
		if err != nil {
			v = kv[1]
		}
		if _, exists := result[k]; !exists {
			result[k] = v
		}
	}
	return result
}

// DetectBrowser classifies a User-Agent header, carried forward from the
// teacher's detectBrowser.
func DetectBrowser(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"):
		return "Safari"
	default:
		return "Unknown Browser"
	}
}

// cleanJoin joins StaticDir and a request path the way a chroot jail would:
// treating reqPath as rooted at "/" and Clean-ing it first collapses any
// ".." before it ever reaches Join, so the result can never climb above
// root — stricter than the teacher's filepath.Abs prefix check, which could
// be fooled by a sibling directory sharing root's name as a prefix.
func cleanJoin(root, reqPath string) string {
	if reqPath == "/" || reqPath == "" {
		reqPath = "/index.html"
	}
	return filepath.Join(root, filepath.Clean("/"+reqPath))
}
