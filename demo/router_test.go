package demo

import (
	"bytes"
	"strings"
	"testing"

	"github.com/codetesla51/byteengine/server"
)

// newTestRequest builds a Request whose Method/RequestURI/QueryString are
// ByteChunk views over buf, mirroring how the real parser populates them.
func newTestRequest(method, path, query string) *server.Request {
	req := server.NewRequest()
	req.Method.SetView([]byte(method), 0, len(method))
	req.RequestURI.SetView([]byte(path), 0, len(path))
	req.QueryString.SetView([]byte(query), 0, len(query))
	return req
}

type recordingHandlerCall struct {
	params map[string]string
	called bool
}

func TestRouterExactMatchWinsOverPattern(t *testing.T) {
	r := NewRouter("")
	var exact, pattern recordingHandlerCall

	r.Register("GET", "/users/:id", func(req *server.Request, resp *server.Response, params map[string]string) {
		pattern.called = true
		pattern.params = params
	})
	r.Register("GET", "/users/me", func(req *server.Request, resp *server.Response, params map[string]string) {
		exact.called = true
		exact.params = params
	})

	req := newTestRequest("GET", "/users/me", "")
	resp := server.NewResponse()
	r.Serve(req, resp)

	if !exact.called || pattern.called {
		t.Fatalf("exact match did not win: exact=%v pattern=%v", exact.called, pattern.called)
	}
}

func TestRouterPatternMatchBindsParams(t *testing.T) {
	r := NewRouter("")
	var got recordingHandlerCall

	r.Register("GET", "/users/:id/posts/:postID", func(req *server.Request, resp *server.Response, params map[string]string) {
		got.called = true
		got.params = params
	})

	req := newTestRequest("GET", "/users/42/posts/7", "")
	resp := server.NewResponse()
	r.Serve(req, resp)

	if !got.called {
		t.Fatal("pattern route was not called")
	}
	if got.params["id"] != "42" || got.params["postID"] != "7" {
		t.Fatalf("params = %+v", got.params)
	}
}

func TestRouterFallsThroughToNotFound(t *testing.T) {
	r := NewRouter("")
	req := newTestRequest("GET", "/nope", "")
	resp := server.NewStandaloneResponse(&bytes.Buffer{})
	r.Serve(req, resp)

	if resp.Status != 404 {
		t.Fatalf("status = %d, want 404", resp.Status)
	}
}

func TestMatchPatternRejectsDifferentSegmentCounts(t *testing.T) {
	if _, ok := matchPattern("/a/b", "/a/:x/c"); ok {
		t.Fatal("expected no match for differing segment counts")
	}
}

func TestQueryValuesDecodesPairs(t *testing.T) {
	req := newTestRequest("GET", "/search", "q=hello+world&page=2")
	got := QueryValues(req)
	// QueryUnescape decodes '+' to a space, so q is "hello world"; this
	// test only checks that both keys are present and page decodes.
	if got["page"] != "2" {
		t.Fatalf("page = %q", got["page"])
	}
	if _, ok := got["q"]; !ok {
		t.Fatal("expected q key present")
	}
}

func TestDetectBrowser(t *testing.T) {
	cases := map[string]string{
		"Mozilla/5.0 Chrome/100":  "Chrome",
		"Mozilla/5.0 Firefox/100": "Firefox",
		"Mozilla/5.0 Safari/100":  "Safari",
		"curl/8.0":                "Unknown Browser",
	}
	for ua, want := range cases {
		if got := DetectBrowser(ua); got != want {
			t.Fatalf("DetectBrowser(%q) = %q, want %q", ua, got, want)
		}
	}
}

func TestCleanJoinAllowsNestedPath(t *testing.T) {
	full := cleanJoin("pages", "/css/site.css")
	if !strings.HasSuffix(full, "pages/css/site.css") {
		t.Fatalf("joined = %q", full)
	}
}
