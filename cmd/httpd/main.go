// Command httpd runs the engine's blocking-I/O endpoint (or, with
// -selector, the gnet-backed non-blocking variant) against demo.Router,
// replacing the teacher's fixed net.Listen accept loop.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codetesla51/byteengine/demo"
	"github.com/codetesla51/byteengine/selector"
	"github.com/codetesla51/byteengine/server"
)

func main() {
	addr := flag.String("addr", "", "bind address (empty = all interfaces)")
	port := flag.Int("port", 8080, "bind port")
	staticDir := flag.String("static", "", "directory to serve static files from")
	useSelector := flag.Bool("selector", false, "use the gnet-backed non-blocking endpoint instead of the blocking-I/O one")
	maxThreads := flag.Int("max-threads", 0, "worker pool size (0 = engine default)")
	compression := flag.Bool("gzip", false, "enable gzip output filter for Accept-Encoding: gzip clients")
	flag.Parse()

	config := server.DefaultConfig()
	config.Address = *addr
	config.Port = *port
	config.Compression = *compression
	if *maxThreads > 0 {
		config.MaxThreads = *maxThreads
	}

	router := demo.NewRouter(*staticDir)
	registerDemoRoutes(router)

	if *useSelector {
		runSelector(config, router)
		return
	}
	runEndpoint(config, router)
}

func runEndpoint(config *server.Config, handler server.Handler) {
	ep := server.NewEndpoint(config, handler)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "httpd: shutting down...")
		ep.Shutdown()
	}()

	log.Printf("httpd: listening on %s:%d (blocking endpoint)", config.Address, config.Port)
	if err := ep.ListenAndServe(); err != nil {
		log.Fatalf("httpd: %v", err)
	}
}

func runSelector(config *server.Config, handler server.Handler) {
	sel := selector.NewSelector(config, handler)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "httpd: shutting down...")
		sel.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%d", config.Address, config.Port)
	log.Printf("httpd: listening on %s (selector endpoint)", addr)
	if err := sel.Serve(addr); err != nil {
		log.Fatalf("httpd: %v", err)
	}
}

// registerDemoRoutes wires up the same handful of routes the teacher's
// fixed accept loop hardcoded, so `go run ./cmd/httpd` is runnable out of
// the box without a -static directory.
func registerDemoRoutes(r *demo.Router) {
	r.Register("GET", "/hello", func(req *server.Request, resp *server.Response, _ map[string]string) {
		ua, _ := req.Headers.Get("user-agent")
		resp.SetStatus(200, "OK")
		resp.SetHeader("content-type", "text/plain")
		body := []byte("Hello " + demo.DetectBrowser(ua) + " user!")
		resp.ContentLength = int64(len(body))
		resp.Write(body)
	})

	r.Register("GET", "/echo", func(req *server.Request, resp *server.Response, _ map[string]string) {
		query := demo.QueryValues(req)
		resp.SetStatus(200, "OK")
		resp.SetHeader("content-type", "text/plain")
		body := []byte(fmt.Sprintf("%v", query))
		resp.ContentLength = int64(len(body))
		resp.Write(body)
	})
}
