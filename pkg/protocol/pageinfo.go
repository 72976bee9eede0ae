package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// PageInfo is the notification sent to the client whenever the server-side
// query parameters change. It carries the new canonical query string.
type PageInfo struct {
	QueryString string
}

// String implements fmt.Stringer for logging.
func (p *PageInfo) String() string {
	return fmt.Sprintf("page info changed: query string = %q", p.QueryString)
}

// EncodePageInfo encodes a PageInfo payload.
func EncodePageInfo(p *PageInfo) []byte {
	return encodeString(p.QueryString)
}

// DecodePageInfo decodes a PageInfo payload.
func DecodePageInfo(data []byte) (*PageInfo, error) {
	qs, err := decodeString(data)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode page info: %w", err)
	}
	return &PageInfo{QueryString: qs}, nil
}

// NewPageInfoFrame wraps a PageInfo in a FramePageInfo frame. It fails with
// ErrFrameTooLarge when the query string does not fit in one frame.
func NewPageInfoFrame(p *PageInfo) (*Frame, error) {
	return NewFrame(FramePageInfo, EncodePageInfo(p))
}

// Rerun is sent by the client when the browser URL changed on its own
// (back/forward navigation) and the script should run again.
type Rerun struct {
	QueryString string
}

// EncodeRerun encodes a Rerun payload.
func EncodeRerun(r *Rerun) []byte {
	return encodeString(r.QueryString)
}

// DecodeRerun decodes a Rerun payload.
func DecodeRerun(data []byte) (*Rerun, error) {
	qs, err := decodeString(data)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode rerun: %w", err)
	}
	return &Rerun{QueryString: qs}, nil
}

// maxErrorLen is the longest message an error frame carries.
const maxErrorLen = MaxPayloadSize - binary.MaxVarintLen64

// NewErrorFrame builds a FrameError frame carrying msg. Messages longer than
// a frame can hold are cut at the last complete UTF-8 character.
func NewErrorFrame(msg string) *Frame {
	return &Frame{Type: FrameError, Payload: encodeString(truncate(msg, maxErrorLen))}
}

// DecodeError decodes a FrameError payload.
func DecodeError(data []byte) (string, error) {
	return decodeString(data)
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
