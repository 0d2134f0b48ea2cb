package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gamesrv/driftwatch/pkg/protocol"
)

func TestHTTPRegistry_LatestBuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/builds/2430930" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("branch") != "public" {
			t.Errorf("Unexpected branch %q", r.URL.Query().Get("branch"))
		}
		w.Write([]byte(`{"buildid": "13943510"}`))
	}))
	defer srv.Close()

	r := NewHTTPRegistry(srv.URL, 2*time.Second)
	build, err := r.LatestBuild(context.Background(), protocol.PackageRef{AppID: 2430930}, "public")
	if err != nil {
		t.Fatal(err)
	}
	if build != "13943510" {
		t.Errorf("Expected build 13943510, got %s", build)
	}
}

func TestHTTPRegistry_Failures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"server error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"malformed payload": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		},
		"empty buildid": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"buildid": ""}`))
		},
	}

	for name, handler := range cases {
		srv := httptest.NewServer(handler)
		r := NewHTTPRegistry(srv.URL, 2*time.Second)
		if _, err := r.LatestBuild(context.Background(), protocol.PackageRef{AppID: 1}, "public"); err == nil {
			t.Errorf("%s: expected error", name)
		}
		srv.Close()
	}
}

func TestHTTPRegistry_Unreachable(t *testing.T) {
	r := NewHTTPRegistry("http://127.0.0.1:1", 500*time.Millisecond)
	if _, err := r.LatestBuild(context.Background(), protocol.PackageRef{AppID: 1}, "public"); err == nil {
		t.Error("Expected error for unreachable registry")
	}
}
