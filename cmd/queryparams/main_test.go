package main

import (
	"bytes"
	"context"
	stderrors "errors"
	"slices"
	"strings"
	"testing"

	"github.com/vango-dev/queryparams/internal/errors"
	"github.com/vango-dev/queryparams/pkg/queryparams"
	"github.com/vango-dev/queryparams/pkg/session"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Empty", []string{"sanitize"}, "\n"},
		{"Single", []string{"sanitize", "page=2"}, "page=2\n"},
		{"Repeated", []string{"sanitize", "tags=go", "page=1", "tags=web"}, "tags=go&tags=web&page=1\n"},
		{"EmptyList", []string{"sanitize", "tags[]=", "a=1"}, "a=1\n"},
		{"Embed", []string{"sanitize", "--previous", "embed=true", "embed=false", "q=x"}, "q=x&embed=true\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := runCmd(t, tc.args...)
			if err != nil {
				t.Fatalf("Execute error = %v", err)
			}
			if out != tc.want {
				t.Errorf("output = %q, want %q", out, tc.want)
			}
		})
	}
}

func TestSanitizeTrace(t *testing.T) {
	out, err := runCmd(t, "sanitize", "--trace", "a=1", "b=2")
	if err != nil {
		t.Fatalf("Execute error = %v", err)
	}
	want := "1: page info changed: query string = \"a=1\"\n" +
		"2: page info changed: query string = \"a=1&b=2\"\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestSanitizeBadArgument(t *testing.T) {
	_, err := runCmd(t, "sanitize", "novalue")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Code != "E200" {
		t.Errorf("error = %v, want E200", err)
	}
}

func TestVersionShort(t *testing.T) {
	out, err := runCmd(t, "version", "--short")
	if err != nil {
		t.Fatalf("Execute error = %v", err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("output = %q, want %q", out, version)
	}
}

func TestDemoApp(t *testing.T) {
	sess := session.New(session.WithQueryString("page=3&tags=a&tags=b&embed=true"))
	params := queryparams.New(queryparams.WithSession(sess))

	if err := demoApp(context.Background(), sess, params); err != nil {
		t.Fatalf("demoApp error = %v", err)
	}
	if err := demoApp(context.Background(), sess, params); err != nil {
		t.Fatalf("second demoApp error = %v", err)
	}

	if got, _ := params.Get("visits"); got != "2" {
		t.Errorf("visits = %q, want 2", got)
	}
	if got := params.GetAll("tags"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("tags = %v", got)
	}
	if params.Contains("embed") {
		t.Error("embed should not be seeded into params")
	}
	want := "page=3&tags=a&tags=b&visits=2&embed=true"
	if sess.QueryString() != want {
		t.Errorf("QueryString = %q, want %q", sess.QueryString(), want)
	}
	// page, tags, visits=1, visits=2
	if n := len(sess.Drain()); n != 4 {
		t.Errorf("published %d notifications, want 4", n)
	}
}

func TestSeedFromQueryKeepsURLOrder(t *testing.T) {
	params := queryparams.New()
	if err := seedFromQuery(params, "z=1&a=2&z=3&Embed=true&m=x%20y"); err != nil {
		t.Fatalf("seedFromQuery error = %v", err)
	}

	keys := slices.Collect(params.Keys())
	if want := []string{"z", "a", "m"}; !slices.Equal(keys, want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
	if got := params.GetAll("z"); !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("z = %v, want [1 3]", got)
	}
	if got, _ := params.Get("m"); got != "x y" {
		t.Errorf("m = %q, want %q", got, "x y")
	}
}
