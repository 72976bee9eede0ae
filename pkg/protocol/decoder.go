package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxStringLen caps the length prefix accepted by ReadString. No string can
// be longer than the payload that carries it.
const MaxStringLen = MaxPayloadSize

// Decoding errors.
var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrTrailingBytes      = errors.New("protocol: trailing bytes after payload")
)

// Decoder reads protocol values from a payload.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a Decoder reading from buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// EOF reports whether every byte has been read.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// ReadUvarint reads an unsigned varint.
func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf[d.pos:])
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.pos += n
	return v, nil
}

// ReadString reads a length-prefixed string.
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if length > MaxStringLen {
		return "", ErrAllocationTooLarge
	}
	if length > uint64(len(d.buf)-d.pos) {
		return "", io.ErrUnexpectedEOF
	}
	end := d.pos + int(length)
	s := string(d.buf[d.pos:end])
	d.pos = end
	return s, nil
}

// Finish fails with ErrTrailingBytes if part of the payload was not read.
func (d *Decoder) Finish() error {
	if !d.EOF() {
		return ErrTrailingBytes
	}
	return nil
}

// decodeString reads a payload holding exactly one length-prefixed string.
func decodeString(data []byte) (string, error) {
	d := NewDecoder(data)
	s, err := d.ReadString()
	if err != nil {
		return "", err
	}
	if err := d.Finish(); err != nil {
		return "", err
	}
	return s, nil
}
