package statuslist

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"

	xe "github.com/idtrace/traceability-controller/pkg/errors"
)

// Bitstring is a status bitstring. Bit 0 is the most significant bit of
// byte 0, as the encodedList format requires.
type Bitstring []byte

var ErrOutOfRange = xe.New("status index out of range")

func NewBitstring(size int) Bitstring {
	return make(Bitstring, (size+7)/8)
}

// Size is the number of bits.
func (b Bitstring) Size() int {
	return len(b) * 8
}

func (b Bitstring) Set(index int, value bool) error {
	if index < 0 || b.Size() <= index {
		return fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, index, b.Size())
	}
	mask := byte(0x80) >> (index % 8)
	if value {
		b[index/8] |= mask
	} else {
		b[index/8] &^= mask
	}
	return nil
}

func (b Bitstring) Get(index int) (bool, error) {
	if index < 0 || b.Size() <= index {
		return false, fmt.Errorf("%w: %d (size %d)", ErrOutOfRange, index, b.Size())
	}
	mask := byte(0x80) >> (index % 8)
	return b[index/8]&mask != 0, nil
}

// Encode compresses the bitstring with gzip and encodes it in base64,
// the "encodedList" wire format.
func (b Bitstring) Encode() (string, error) {
	buf := bytes.Buffer{}
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(b); err != nil {
		return "", xe.Wrap(err)
	}
	if err := zw.Close(); err != nil {
		return "", xe.Wrap(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeBitstring reverses Encode.
func DecodeBitstring(encoded string) (Bitstring, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer zr.Close()

	bits, err := io.ReadAll(zr)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return Bitstring(bits), nil
}
