package protocol

import "encoding/binary"

// Encoder appends protocol values to a buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder that can hold size bytes before growing.
func NewEncoder(size int) *Encoder {
	return &Encoder{buf: make([]byte, 0, size)}
}

// Bytes returns the encoded bytes. The slice aliases the encoder's buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// WriteHeader appends a frame header announcing a payload of n bytes.
// Callers check n against MaxPayloadSize.
func (e *Encoder) WriteHeader(ft FrameType, flags FrameFlags, n int) {
	e.buf = append(e.buf, byte(ft), byte(flags))
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(n))
}

// WriteBytes appends raw bytes.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteUvarint appends an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	e.buf = binary.AppendUvarint(e.buf, v)
}

// WriteString appends s prefixed with its varint byte length.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// encodeString returns s as a single length-prefixed payload.
func encodeString(s string) []byte {
	e := NewEncoder(binary.MaxVarintLen64 + len(s))
	e.WriteString(s)
	return e.Bytes()
}
