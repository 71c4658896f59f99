package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMakeRequestReturnsNon2xxWithoutError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"error":"short and stout"}`))
	}))
	defer ts.Close()

	c := NewBaseClient(ts.URL)
	resp, err := c.Get(context.Background(), "/anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusTeapot || resp.OK() {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(string(resp.Body), "short and stout") {
		t.Errorf("body = %s", resp.Body)
	}
}

func TestMakeRequestSendsHeaders(t *testing.T) {
	var gotAuth, gotType, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := NewBaseClient(ts.URL)
	c.SetHeader("Authorization", "Bearer abc")
	resp, err := c.Patch(context.Background(), "/x", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.OK() {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotAuth != "Bearer abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotBody != `{"a":1}` {
		t.Errorf("body = %q", gotBody)
	}
}

func TestMakeRequestTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewBaseClient(url)
	if _, err := c.Get(context.Background(), "/"); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestVerbHelpersUseTheirMethod(t *testing.T) {
	var gotMethod, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewBaseClient(ts.URL)
	ctx := context.Background()
	tests := []struct {
		name     string
		call     func() (*Response, error)
		wantVerb string
		wantBody string
	}{
		{"get", func() (*Response, error) { return c.Get(ctx, "/r") }, http.MethodGet, ""},
		{"post", func() (*Response, error) { return c.Post(ctx, "/r", strings.NewReader(`{"p":1}`)) }, http.MethodPost, `{"p":1}`},
		{"patch", func() (*Response, error) { return c.Patch(ctx, "/r", strings.NewReader(`{"q":2}`)) }, http.MethodPatch, `{"q":2}`},
		{"delete", func() (*Response, error) { return c.Delete(ctx, "/r") }, http.MethodDelete, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.call()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !resp.OK() {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if gotMethod != tt.wantVerb || gotBody != tt.wantBody {
				t.Errorf("got %s %q, want %s %q", gotMethod, gotBody, tt.wantVerb, tt.wantBody)
			}
		})
	}
}
