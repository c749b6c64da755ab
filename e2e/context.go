//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"personpatch/internal/audit"
	httpapi "personpatch/internal/http"
	"personpatch/internal/person"
	"personpatch/internal/person/service"
	"personpatch/internal/person/store"
	"personpatch/internal/platform/metrics"
)

// TestContext holds the state of one scenario: the target server, the last
// response, and the ids of people created along the way.
type TestContext struct {
	baseURL string
	client  *http.Client
	server  *httptest.Server
	events  *audit.InMemoryStore

	status int
	header http.Header
	body   []byte

	people map[string]string
}

// NewTestContext targets E2E_BASE_URL when set, otherwise an in-process
// server backed by the in-memory store.
func NewTestContext() *TestContext {
	tc := &TestContext{
		client: &http.Client{Timeout: 10 * time.Second},
		people: map[string]string{},
	}
	if base := os.Getenv("E2E_BASE_URL"); base != "" {
		tc.baseURL = strings.TrimRight(base, "/")
		return tc
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	tc.events = audit.NewInMemoryStore()
	svc := person.NewService(store.NewInMemory(),
		service.WithLogger(logger),
		service.WithAuditPublisher(audit.NewSyncPublisher(tc.events)),
	)
	router := httpapi.NewRouter(httpapi.Options{
		Logger:   logger,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	}, person.NewHandler(svc, logger))
	tc.server = httptest.NewServer(router)
	tc.baseURL = tc.server.URL
	return tc
}

// Close stops the in-process server, if any.
func (tc *TestContext) Close() {
	if tc.server != nil {
		tc.server.Close()
	}
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, "", nil)
}

func (tc *TestContext) POST(path string, body string) error {
	return tc.do(http.MethodPost, path, "application/json", []byte(body))
}

func (tc *TestContext) PATCH(path, contentType, body string) error {
	return tc.do(http.MethodPatch, path, contentType, []byte(body))
}

func (tc *TestContext) do(method, path, contentType string, body []byte) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, tc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	tc.status = resp.StatusCode
	tc.header = resp.Header
	return nil
}

func (tc *TestContext) Status() int {
	return tc.status
}

func (tc *TestContext) Header(key string) string {
	return tc.header.Get(key)
}

func (tc *TestContext) Body() string {
	return string(tc.body)
}

// ResponseJSON decodes the last response body into a generic value.
func (tc *TestContext) ResponseJSON() (any, error) {
	var v any
	if err := json.Unmarshal(tc.body, &v); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w (body: %s)", err, tc.body)
	}
	return v, nil
}

func (tc *TestContext) RememberPerson(alias, personID string) {
	tc.people[alias] = personID
}

func (tc *TestContext) PersonID(alias string) (string, error) {
	personID, ok := tc.people[alias]
	if !ok {
		return "", fmt.Errorf("no person remembered as %q", alias)
	}
	return personID, nil
}

// EventCount reports how many change events the in-process server recorded,
// or -1 when running against an external server.
func (tc *TestContext) EventCount() int {
	if tc.events == nil {
		return -1
	}
	events, _ := tc.events.ListAll(context.Background())
	return len(events)
}
