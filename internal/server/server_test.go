package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/richconv/internal/config"
	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/pkg/convert"
	"github.com/jmylchreest/richconv/pkg/richtext"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		Addr:            "127.0.0.1:0",
		MaxBodySize:     "1KB",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		IdleTimeout:     time.Second,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, opts ...convert.Option) *httptest.Server {
	t.Helper()
	s, err := New(convert.New(opts...), testConfig())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/convert", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	return resp, b
}

func TestConvertMarkdown(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, `{"from":"html","to":"markdown","html":"<p>Hello <em>world</em> <a href=\"https://x.test\">link</a></p>"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if string(body) != "Hello _world_ link" {
		t.Errorf("body = %q", body)
	}
}

func TestConvertRichText(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, `{"from":"markdown","to":"richtext","markdown":"**bold** text"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var doc richtext.Node
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("unmarshal error = %v", err)
	}
	if err := richtext.Validate(&doc); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
	want := `document[paragraph[text("bold" bold) text(" text")]]`
	if doc.String() != want {
		t.Errorf("document = %s, want %s", doc.String(), want)
	}
}

func TestConvertIdentity(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, `{"from":"markdown","to":"markdown","markdown":"# x\n\n\n*y*"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if string(body) != "# x\n\n\n*y*" {
		t.Errorf("body = %q", body)
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		kind    convert.ErrorKind
		field   string
		message string
		allowed []string
	}{
		{
			name:    "missing payload",
			body:    `{"from":"html","to":"markdown"}`,
			status:  http.StatusBadRequest,
			kind:    convert.KindValidation,
			field:   "html",
			message: `Please specify a value for "html" in your body`,
		},
		{
			name:    "bad to",
			body:    `{"from":"markdown","to":"pdf","markdown":"x"}`,
			status:  http.StatusBadRequest,
			kind:    convert.KindValidation,
			field:   "to",
			message: `Please specify "to" value as "markdown" or "richtext"`,
			allowed: []string{"markdown", "richtext"},
		},
		{
			name:    "bad from",
			body:    `{"from":"rtf","to":"markdown"}`,
			status:  http.StatusBadRequest,
			kind:    convert.KindValidation,
			field:   "from",
			message: `Please specify "from" value as "html" or "markdown"`,
			allowed: []string{"html", "markdown"},
		},
		{
			name:    "malformed json",
			body:    `{"from":`,
			status:  http.StatusBadRequest,
			kind:    convert.KindValidation,
			message: "Request body must be a JSON object",
		},
		{
			name:    "too large",
			body:    `{"from":"markdown","to":"markdown","markdown":"` + strings.Repeat("x", 2000) + `"}`,
			status:  http.StatusRequestEntityTooLarge,
			kind:    convert.KindValidation,
			message: "Request body exceeds 1.0 kB",
		},
	}

	ts := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			var eb errorBody
			if err := json.Unmarshal(body, &eb); err != nil {
				t.Fatalf("unmarshal error = %v (body %s)", err, body)
			}
			if eb.Error.Kind != tt.kind || eb.Error.Field != tt.field || eb.Error.Message != tt.message {
				t.Errorf("error = %+v", eb.Error)
			}
			if strings.Join(eb.Error.Allowed, ",") != strings.Join(tt.allowed, ",") {
				t.Errorf("allowed = %v, want %v", eb.Error.Allowed, tt.allowed)
			}
		})
	}
}

type brokenConverter struct{}

func (brokenConverter) ToMarkdown(string) (string, error) { return "", errors.New("unreadable") }
func (brokenConverter) Name() string                      { return "broken" }

func TestConvertParseErrorStatus(t *testing.T) {
	ts := newTestServer(t, convert.WithConverter(brokenConverter{}))

	resp, body := post(t, ts, `{"from":"html","to":"richtext","html":"<p>x</p>"}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		t.Fatal(err)
	}
	if eb.Error.Kind != convert.KindParse {
		t.Errorf("kind = %q", eb.Error.Kind)
	}
}

func TestErrorResponseUnknown(t *testing.T) {
	status, detail := errorResponse(errors.New("boom"))
	if status != http.StatusInternalServerError || detail.Kind != "internal" {
		t.Errorf("errorResponse() = %d, %+v", status, detail)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/convert")
	if err != nil {
		t.Fatal(err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestNewInvalidBodySize(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBodySize = "huge"
	if _, err := New(convert.New(), cfg); err == nil {
		t.Error("expected error for invalid body size")
	}
}

func TestRequestLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.Init(logger.Options{Debug: true, Output: buf})
	defer logger.Init(logger.Options{})

	ts := newTestServer(t)
	post(t, ts, `{"from":"html","to":"markdown"}`)

	out := buf.String()
	for _, want := range []string{"request_id=1", "request handled", "status=400", "conversion failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log output:\n%s", want, out)
		}
	}
}

func TestServeGracefulShutdown(t *testing.T) {
	s, err := New(convert.New(), testConfig())
	if err != nil {
		t.Fatal(err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/healthz"
	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server did not start: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
