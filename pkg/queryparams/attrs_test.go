package queryparams

import (
	"errors"
	"testing"
)

func TestAttrsEquivalence(t *testing.T) {
	s, ctx := newBoundStore()
	attrs := s.Attrs()

	if err := attrs.Set("a", Single("1")); err != nil {
		t.Fatalf("Attrs.Set error = %v", err)
	}
	if got, err := s.Get("a"); err != nil || got != "1" {
		t.Errorf("Get(a) = %q, %v; want 1", got, err)
	}

	s.Set("b", Multi("x", "y"))
	if got, err := attrs.Get("b"); err != nil || got != "y" {
		t.Errorf("Attrs.Get(b) = %q, %v; want y", got, err)
	}

	if err := attrs.SetAny("c", []int{3}); err != nil {
		t.Fatalf("Attrs.SetAny error = %v", err)
	}
	if got := s.GetAll("c"); len(got) != 1 || got[0] != "3" {
		t.Errorf("GetAll(c) = %v", got)
	}

	if err := attrs.Delete("a"); err != nil {
		t.Fatalf("Attrs.Delete error = %v", err)
	}
	if s.Contains("a") {
		t.Error("a still present after Attrs.Delete")
	}

	// set a, set b, set c, delete a
	if len(ctx.queue) != 4 {
		t.Errorf("published %d messages, want 4", len(ctx.queue))
	}
}

func TestAttrsMissing(t *testing.T) {
	s := New()
	attrs := s.Attrs()
	want := `query_params has no key "gone". Did you forget to initialize it?`

	_, getErr := attrs.Get("gone")
	delErr := attrs.Delete("gone")

	for name, err := range map[string]error{"Get": getErr, "Delete": delErr} {
		if !errors.Is(err, ErrNoAttribute) {
			t.Errorf("%s error = %v, want ErrNoAttribute", name, err)
		}
		if errors.Is(err, ErrKeyNotFound) {
			t.Errorf("%s error should not match ErrKeyNotFound", name)
		}
		var ae *AttributeError
		if !errors.As(err, &ae) || ae.Key != "gone" {
			t.Errorf("%s: errors.As AttributeError = %+v", name, ae)
		}
		if err.Error() != want {
			t.Errorf("%s Error() = %q, want %q", name, err.Error(), want)
		}
	}

	// Item-style and attribute-style messages are identical.
	_, itemErr := s.Get("gone")
	if itemErr.Error() != getErr.Error() {
		t.Errorf("messages differ: %q vs %q", itemErr.Error(), getErr.Error())
	}
}

func TestAttrsPublishErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	ctx := &recordingContext{enqueueErr: boom}
	s := New(WithSession(ctx))

	err := s.Attrs().Set("a", Single("1"))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	var pe *PublishError
	if !errors.As(err, &pe) {
		t.Errorf("error = %T, want *PublishError", err)
	}
}
