package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const version byte = 1

var (
	ErrCorrupt = errors.New("ixcache: corrupt entry")
	magic4     = [...]byte{'I', 'X', 'C', 'E'}
)

// HasMagic reports whether b starts with the envelope magic.
func HasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | clen(u8) | codec(clen) | vlen(u32 be) | payload(vlen)
func EncodeEntry(codec string, payload []byte) ([]byte, error) {
	if l := len(codec); l == 0 || l > 0xFF {
		return nil, fmt.Errorf("ixcache: invalid codec name length %d", l)
	}
	if uint64(len(payload)) > 0xFFFFFFFF {
		return nil, fmt.Errorf("ixcache: payload too large for envelope: %d", len(payload))
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + len(codec) + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(byte(len(codec)))
	buf.WriteString(codec)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes(), nil
}

// DecodeEntry returns the codec name and a payload slice aliasing b.
func DecodeEntry(b []byte) (codec string, payload []byte, err error) {
	const hdr = 4 + 1 + 1
	if len(b) < hdr || !HasMagic(b) || b[4] != version {
		return "", nil, ErrCorrupt
	}
	off := 5

	clen := int(b[off])
	off++
	if clen == 0 || clen > len(b)-off {
		return "", nil, ErrCorrupt
	}
	codec = string(b[off : off+clen])
	off += clen

	if off+4 > len(b) {
		return "", nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact length: no trailing bytes
		return "", nil, ErrCorrupt
	}

	return codec, b[off : off+vlen], nil
}
