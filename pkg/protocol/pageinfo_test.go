package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPageInfoRoundTrip(t *testing.T) {
	tests := []string{
		"",
		"page=2",
		"tags=x&tags=y&embed=true",
		strings.Repeat("a", 300), // two-byte varint length
	}
	for _, qs := range tests {
		frame, err := NewPageInfoFrame(&PageInfo{QueryString: qs})
		if err != nil {
			t.Fatalf("NewPageInfoFrame(%q) error = %v", qs, err)
		}
		decoded, err := DecodeFrame(frame.Encode())
		if err != nil {
			t.Fatalf("DecodeFrame error = %v", err)
		}
		if decoded.Type != FramePageInfo {
			t.Errorf("Type = %v, want PageInfo", decoded.Type)
		}
		pi, err := DecodePageInfo(decoded.Payload)
		if err != nil {
			t.Fatalf("DecodePageInfo error = %v", err)
		}
		if pi.QueryString != qs {
			t.Errorf("QueryString = %q, want %q", pi.QueryString, qs)
		}
	}
}

func TestPageInfoString(t *testing.T) {
	got := (&PageInfo{QueryString: "a=1"}).String()
	want := `page info changed: query string = "a=1"`
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestDecodePageInfoErrors(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		// Length 5, only 2 bytes follow.
		_, err := DecodePageInfo([]byte{0x05, 'a', 'b'})
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("err = %v, want ErrUnexpectedEOF", err)
		}
	})

	t.Run("Trailing", func(t *testing.T) {
		_, err := DecodePageInfo([]byte{0x01, 'a', 'b'})
		if !errors.Is(err, ErrTrailingBytes) {
			t.Errorf("err = %v, want ErrTrailingBytes", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
		_, err := DecodePageInfo(data)
		if !errors.Is(err, ErrVarintOverflow) {
			t.Errorf("err = %v, want ErrVarintOverflow", err)
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		e := NewEncoder(8)
		e.WriteUvarint(MaxStringLen + 1)
		_, err := DecodePageInfo(e.Bytes())
		if !errors.Is(err, ErrAllocationTooLarge) {
			t.Errorf("err = %v, want ErrAllocationTooLarge", err)
		}
	})
}

func TestRerunRoundTrip(t *testing.T) {
	r, err := DecodeRerun(EncodeRerun(&Rerun{QueryString: "q=go"}))
	if err != nil {
		t.Fatalf("DecodeRerun error = %v", err)
	}
	if r.QueryString != "q=go" {
		t.Errorf("QueryString = %q, want %q", r.QueryString, "q=go")
	}
}

func TestErrorFrame(t *testing.T) {
	f := NewErrorFrame("boom")
	if f.Type != FrameError {
		t.Errorf("Type = %v, want Error", f.Type)
	}
	msg, err := DecodeError(f.Payload)
	if err != nil {
		t.Fatalf("DecodeError error = %v", err)
	}
	if msg != "boom" {
		t.Errorf("msg = %q, want boom", msg)
	}

	long := NewErrorFrame(strings.Repeat("x", MaxPayloadSize*2))
	if len(long.Payload) > MaxPayloadSize {
		t.Errorf("error payload = %d bytes, exceeds MaxPayloadSize", len(long.Payload))
	}
}

func TestErrorFrameTruncatesAtRuneBoundary(t *testing.T) {
	// A three-byte rune straddles the cut so a byte-offset cut would split it.
	msg := strings.Repeat("x", maxErrorLen-1) + "€" + "tail"
	got, err := DecodeError(NewErrorFrame(msg).Payload)
	if err != nil {
		t.Fatalf("DecodeError error = %v", err)
	}
	if !utf8.ValidString(got) {
		t.Error("truncated message is not valid UTF-8")
	}
	if want := strings.Repeat("x", maxErrorLen-1); got != want {
		t.Errorf("truncated length = %d, want %d", len(got), len(want))
	}
}

func TestEncoderHeader(t *testing.T) {
	e := NewEncoder(FrameHeaderSize)
	e.WriteHeader(FrameRerun, FlagFinal, 0x0102)
	want := []byte{byte(FrameRerun), byte(FlagFinal), 0x01, 0x02}
	if got := e.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("header = %v, want %v", got, want)
	}

	e = NewEncoder(4)
	e.WriteString("abc")
	if got := e.Bytes(); !bytes.Equal(got, []byte{0x03, 'a', 'b', 'c'}) {
		t.Errorf("string = %v", got)
	}
}
