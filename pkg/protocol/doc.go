// Package protocol implements the binary wire format used between a
// query-params session and its browser client.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FramePageInfo (0x01): Server → Client, query string changed
//   - FrameRerun (0x02): Client → Server, rerun with a new query string
//   - FrameError (0x05): Error message
//
// # Encoding
//
// Payloads are built from two primitives:
//
//   - Varint: protobuf-style unsigned integers
//   - Length-prefixed: strings prefixed with their varint byte length
//
// A PageInfo payload is a single length-prefixed string:
//
//	[varint len][query string bytes]
package protocol
