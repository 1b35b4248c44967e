package frame

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// Encode frames payload. With FlagZstd the payload is compressed first.
func Encode(payload []byte, flags Flags) ([]byte, error) {
	return AppendEncode(nil, payload, flags)
}

// AppendEncode appends the frame of payload to dst.
func AppendEncode(dst, payload []byte, flags Flags) ([]byte, error) {
	if flags&^knownFlags != 0 {
		return nil, fmt.Errorf("%w: %#02x", ErrUnknownFlags, uint8(flags))
	}
	if flags&FlagZstd != 0 {
		e, err := encoder()
		if err != nil {
			return nil, err
		}
		payload = e.EncodeAll(payload, nil)
	}
	if uint64(len(payload)) > math.MaxUint32 {
		return nil, ErrTooLarge
	}

	start := len(dst)
	dst = append(dst, magic[0], magic[1], Version, byte(flags))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(payload)))
	dst = append(dst, payload...)

	// CRC over everything after the magic
	crc := crc32.ChecksumIEEE(dst[start+len(magic):])
	return binary.LittleEndian.AppendUint32(dst, crc), nil
}
