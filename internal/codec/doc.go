// Package codec is the fixed-budget wire codec shared by every partition.
//
// Messages are CBOR encoded with Core Deterministic Encoding (RFC 8949 §4.2):
// smallest integer and float encodings, no indefinite lengths. Struct types
// exchanged over sampling ports use the `toarray` option so field names never
// reach the wire, which is what keeps an input message inside 128 bytes and an
// alert state inside 16.
//
//	buf := make([]byte, capacity)
//	out, err := codec.EncodeInto(msg, buf) // ErrEncodingTooLarge if it does not fit
//	err = codec.Decode(out, &msg)          // ErrDecodingFailed on malformed bytes
package codec
