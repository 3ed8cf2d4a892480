package snapshot

import (
	"encoding/binary"
	"strconv"
)

// lengthKind distinguishes a plain length from the "special" encodings
// RDB uses to pack small integers and LZF-compressed strings.
type lengthKind int

const (
	lengthPlain lengthKind = iota
	lengthSpecialInt8
	lengthSpecialInt16
	lengthSpecialInt32
	lengthSpecialLZF
)

type decodedLength struct {
	kind  lengthKind
	value uint64 // meaningful when kind == lengthPlain
}

// readLength decodes the RDB length-encoding header at buf[pos:] and
// returns the decoded length plus the offset of the next byte.
func readLength(buf []byte, pos int) (decodedLength, int, error) {
	if pos >= len(buf) {
		return decodedLength{}, pos, ErrMalformedSnapshot
	}
	b := buf[pos]
	switch b >> 6 {
	case 0b00:
		return decodedLength{kind: lengthPlain, value: uint64(b & 0x3F)}, pos + 1, nil
	case 0b01:
		if pos+1 >= len(buf) {
			return decodedLength{}, pos, ErrMalformedSnapshot
		}
		v := uint64(b&0x3F)<<8 | uint64(buf[pos+1])
		return decodedLength{kind: lengthPlain, value: v}, pos + 2, nil
	case 0b10:
		if pos+5 > len(buf) {
			return decodedLength{}, pos, ErrMalformedSnapshot
		}
		v := binary.BigEndian.Uint32(buf[pos+1 : pos+5])
		return decodedLength{kind: lengthPlain, value: uint64(v)}, pos + 5, nil
	default: // 0b11, special
		switch b & 0x3F {
		case 0:
			return decodedLength{kind: lengthSpecialInt8}, pos + 1, nil
		case 1:
			return decodedLength{kind: lengthSpecialInt16}, pos + 1, nil
		case 2:
			return decodedLength{kind: lengthSpecialInt32}, pos + 1, nil
		case 3:
			return decodedLength{kind: lengthSpecialLZF}, pos + 1, nil
		default:
			return decodedLength{}, pos, ErrMalformedSnapshot
		}
	}
}

// readString decodes an RDB string value: a length header followed
// either by that many raw bytes, or — for the special encodings — an
// integer rendered as ASCII decimal, or an LZF-compressed payload.
func readString(buf []byte, pos int) ([]byte, int, error) {
	length, next, err := readLength(buf, pos)
	if err != nil {
		return nil, pos, err
	}
	switch length.kind {
	case lengthPlain:
		end := next + int(length.value)
		if end < next || end > len(buf) {
			return nil, pos, ErrMalformedSnapshot
		}
		return buf[next:end], end, nil

	case lengthSpecialInt8:
		if next+1 > len(buf) {
			return nil, pos, ErrMalformedSnapshot
		}
		v := int8(buf[next])
		return []byte(strconv.FormatInt(int64(v), 10)), next + 1, nil

	case lengthSpecialInt16:
		if next+2 > len(buf) {
			return nil, pos, ErrMalformedSnapshot
		}
		v := int16(binary.LittleEndian.Uint16(buf[next : next+2]))
		return []byte(strconv.FormatInt(int64(v), 10)), next + 2, nil

	case lengthSpecialInt32:
		if next+4 > len(buf) {
			return nil, pos, ErrMalformedSnapshot
		}
		v := int32(binary.LittleEndian.Uint32(buf[next : next+4]))
		return []byte(strconv.FormatInt(int64(v), 10)), next + 4, nil

	case lengthSpecialLZF:
		compressedLen, next2, err := readLength(buf, next)
		if err != nil || compressedLen.kind != lengthPlain {
			return nil, pos, ErrMalformedSnapshot
		}
		uncompressedLen, next3, err := readLength(buf, next2)
		if err != nil || uncompressedLen.kind != lengthPlain {
			return nil, pos, ErrMalformedSnapshot
		}
		end := next3 + int(compressedLen.value)
		if end < next3 || end > len(buf) {
			return nil, pos, ErrMalformedSnapshot
		}
		out, err := lzfDecompress(buf[next3:end], int(uncompressedLen.value))
		if err != nil {
			return nil, pos, err
		}
		return out, end, nil
	}
	return nil, pos, ErrMalformedSnapshot
}
