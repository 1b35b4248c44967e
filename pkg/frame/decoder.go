package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/compress/zstd"
)

// Header is the fixed prefix of a frame.
type Header struct {
	Version uint8
	Flags   Flags
	Length  uint32
}

// ParseHeader validates the fixed prefix of data without touching the
// payload.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than a header", ErrLengthMismatch, len(data))
	}
	if data[0] != magic[0] || data[1] != magic[1] {
		return Header{}, ErrBadMagic
	}
	h := Header{
		Version: data[2],
		Flags:   Flags(data[3]),
		Length:  binary.LittleEndian.Uint32(data[4:]),
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Flags&^knownFlags != 0 {
		return h, fmt.Errorf("%w: %#02x", ErrUnknownFlags, uint8(h.Flags))
	}
	return h, nil
}

// Decode checks a frame and returns its payload. An uncompressed payload
// aliases data; a compressed one is decoded into a new buffer of at most
// MaxDecodedSize bytes.
func Decode(data []byte) ([]byte, Flags, error) {
	return decode(data, decoder)
}

func decode(data []byte, decoder func() (*zstd.Decoder, error)) ([]byte, Flags, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, 0, err
	}
	if uint64(len(data)) != uint64(h.Length)+Overhead {
		return nil, 0, fmt.Errorf("%w: header says %d payload bytes, frame has %d", ErrLengthMismatch, h.Length, len(data)-Overhead)
	}
	end := headerSize + int(h.Length)
	want := binary.LittleEndian.Uint32(data[end:])
	if crc32.ChecksumIEEE(data[len(magic):end]) != want {
		return nil, 0, ErrChecksum
	}

	payload := data[headerSize:end:end]
	if h.Flags&FlagZstd != 0 {
		d, err := decoder()
		if err != nil {
			return nil, 0, err
		}
		payload, err = d.DecodeAll(payload, nil)
		if errors.Is(err, zstd.ErrDecoderSizeExceeded) || errors.Is(err, zstd.ErrWindowSizeExceeded) {
			return nil, 0, fmt.Errorf("%w: decompressed payload exceeds the size limit", ErrTooLarge)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("frame: decompress: %w", err)
		}
	}
	return payload, h.Flags, nil
}
