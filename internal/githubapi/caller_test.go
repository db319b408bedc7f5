package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mx42/stargazer/cfg"
	"github.com/mx42/stargazer/pkg/log"
)

func newTestCaller(t *testing.T, url string, perPage int, token string) *Caller {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	config.GithubApi.ApiUrl = url
	config.GithubApi.PerPage = perPage
	logger, _ := log.NewCslLogger()
	return NewCaller(logger, config, token)
}

func TestFetchProjectStarsPagination(t *testing.T) {
	pages := map[string]string{
		"1": `[{"login":"a"},{"login":"b"}]`,
		"2": `[{"login":"c"}]`,
	}
	requested := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/o/r/stargazers" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("per_page"); got != "2" {
			t.Errorf("unexpected per_page: %s", got)
		}
		requested++
		fmt.Fprint(w, pages[r.URL.Query().Get("page")])
	}))
	defer srv.Close()

	caller := newTestCaller(t, srv.URL, 2, "")
	stars, err := caller.FetchProjectStars(context.Background(), "o", "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stars) != 3 || stars[0] != "a" || stars[1] != "b" || stars[2] != "c" {
		t.Errorf("unexpected stargazers: %v", stars)
	}
	// The short second page terminates the loop
	if requested != 2 {
		t.Errorf("expected 2 page requests, got %d", requested)
	}
}

func TestFetchUserStarsSinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/s1/starred" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		fmt.Fprint(w, `[{"full_name":"a/1"}]`)
	}))
	defer srv.Close()

	caller := newTestCaller(t, srv.URL, 2, "")
	stars, err := caller.FetchUserStars(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stars) != 1 || stars[0] != "a/1" {
		t.Errorf("unexpected starred repos: %v", stars)
	}
}

func TestStatusCodeMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name:   "401 invalid credentials",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrInvalidCredentials) {
					t.Errorf("expected ErrInvalidCredentials, got %v", err)
				}
			},
		},
		{
			name:   "404 not found",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "500 unexpected",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var statusErr *UnexpectedStatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("expected UnexpectedStatusError, got %v", err)
				}
				if statusErr.StatusCode != http.StatusInternalServerError {
					t.Errorf("unexpected status code: %d", statusErr.StatusCode)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			caller := newTestCaller(t, srv.URL, 2, "")
			_, err := caller.FetchProjectStars(context.Background(), "o", "r")
			if err == nil {
				t.Fatal("expected an error")
			}
			tt.check(t, err)
		})
	}
}

func TestBearerTokenHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer t0ken" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	caller := newTestCaller(t, srv.URL, 2, "t0ken")
	if _, err := caller.FetchProjectStars(context.Background(), "o", "r"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNoAuthorizationHeaderWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("expected no Authorization header, got %q", got)
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	caller := newTestCaller(t, srv.URL, 2, "")
	if _, err := caller.FetchUserStars(context.Background(), "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
