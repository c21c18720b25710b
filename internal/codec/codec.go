package codec

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	// ErrEncodingTooLarge is returned when an encoded value exceeds its buffer.
	// Budgets are compile-time constants, so callers treat it as fatal.
	ErrEncodingTooLarge = errors.New("encoding too large")
	// ErrDecodingFailed is returned when received bytes do not parse.
	ErrDecodingFailed = errors.New("decoding failed")
)

var (
	// encMode encodes with Core Deterministic Encoding.
	encMode cbor.EncMode
	// decMode rejects trailing bytes and oversized containers.
	decMode cbor.DecMode
)

// maxContainerElements bounds arrays decoded from a port; no message is
// anywhere near it, so anything larger is corrupt.
const maxContainerElements = 64

func init() { //nolint:gochecknoinits // Modes are immutable and shared by every partition.
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		MaxArrayElements:  maxContainerElements,
		MaxMapPairs:       maxContainerElements,
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v without any budget.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Size returns the encoded length of v.
func Size(v any) (int, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return 0, err
	}

	return len(data), nil
}

// EncodeInto encodes v into buf and returns the written prefix of buf.
func EncodeInto(v any, buf []byte) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}

	if len(data) > len(buf) {
		return nil, fmt.Errorf("%w: %T needs %d bytes, budget is %d", ErrEncodingTooLarge, v, len(data), len(buf))
	}

	n := copy(buf, data)

	return buf[:n], nil
}

// Decode decodes data into v. Every failure wraps ErrDecodingFailed.
func Decode(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %T: %w", ErrDecodingFailed, v, err)
	}

	return nil
}
