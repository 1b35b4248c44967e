// Package frame wraps molecule buffers in a small checksummed envelope for
// storage and transport:
//
//	[magic "MF"][version u8][flags u8][length u32 LE][payload][crc32 u32 LE]
//
// length is the size of the payload as stored, after compression. The CRC
// (IEEE) covers every byte after the magic up to the end of the payload.
package frame

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Flags describe how the payload is stored.
type Flags uint8

const (
	// FlagZstd marks a zstd compressed payload.
	FlagZstd Flags = 1 << 0

	knownFlags = FlagZstd
)

const (
	Version = 1

	headerSize  = 8
	trailerSize = 4
	// Overhead is the number of bytes a frame adds around its payload.
	Overhead = headerSize + trailerSize

	// MaxDecodedSize bounds the size of a decompressed payload so a small
	// frame cannot expand without limit.
	MaxDecodedSize = 64 << 20
)

var magic = [2]byte{'M', 'F'}

var (
	ErrBadMagic           = errors.New("frame: bad magic")
	ErrUnsupportedVersion = errors.New("frame: unsupported version")
	ErrUnknownFlags       = errors.New("frame: unknown flags")
	ErrLengthMismatch     = errors.New("frame: length mismatch")
	ErrChecksum           = errors.New("frame: checksum mismatch")
	ErrTooLarge           = errors.New("frame: payload too large")
)

var (
	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error

	decOnce sync.Once
	dec     *zstd.Decoder
	decErr  error
)

// Both coders are only used through EncodeAll/DecodeAll, which are safe for
// concurrent use.
func encoder() (*zstd.Encoder, error) {
	encOnce.Do(func() {
		enc, encErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	})
	return enc, encErr
}

func decoder() (*zstd.Decoder, error) {
	decOnce.Do(func() {
		dec, decErr = newDecoder(MaxDecodedSize)
	})
	return dec, decErr
}

func newDecoder(limit uint64) (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(limit))
}
