package snapshot

import (
	"encoding/binary"
	"sort"

	"kvredis/internal/store"
)

// Dump serializes the live contents of src into a byte-exact RDB-style
// snapshot: magic, version 0009, the redis-ver/redis-bits aux pairs,
// database 0, a size hint, every entry (with an absolute-deadline
// prefix where applicable), EOF, and a trailing CRC64 checksum.
func Dump(src *store.Store) []byte {
	var out []byte
	out = append(out, magic...)
	out = append(out, "0009"...)

	out = appendAux(out, "redis-ver", "7.0.0")
	out = appendAux(out, "redis-bits", "64")

	out = append(out, opSelectDB)
	out = appendLength(out, 0)

	pairs := src.ToPairsWithDeadlines()
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out = append(out, opResizeDB)
	out = appendLength(out, uint64(len(pairs)))
	withExpiry := 0
	for _, v := range pairs {
		if v.HasTTL {
			withExpiry++
		}
	}
	out = appendLength(out, uint64(withExpiry))

	for _, key := range keys {
		v := pairs[key]
		if v.HasTTL {
			out = append(out, opExpiryMS)
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], uint64(v.Deadline.UnixMilli()))
			out = append(out, buf[:]...)
		}
		out = append(out, 0) // type 0: string
		out = appendString(out, []byte(key))
		out = appendString(out, v.Bytes)
	}

	out = append(out, opEOF)
	out = binary.LittleEndian.AppendUint64(out, checksum(out))
	return out
}

func appendAux(out []byte, key, value string) []byte {
	out = append(out, opAux)
	out = appendString(out, []byte(key))
	out = appendString(out, []byte(value))
	return out
}

// appendLength encodes n using the smallest length-encoding mode that
// fits: 6-bit, 14-bit, or the 32-bit big-endian form.
func appendLength(out []byte, n uint64) []byte {
	switch {
	case n < 1<<6:
		return append(out, byte(n))
	case n < 1<<14:
		return append(out, byte(0b01<<6|(n>>8)), byte(n))
	default:
		out = append(out, 0b10<<6)
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(n))
		return append(out, buf[:]...)
	}
}

func appendString(out []byte, b []byte) []byte {
	out = appendLength(out, uint64(len(b)))
	return append(out, b...)
}
