package snapshot

import (
	"encoding/binary"
	"time"

	"github.com/sirupsen/logrus"

	"kvredis/internal/store"
)

const (
	opAux       = 0xFA
	opSelectDB  = 0xFE
	opResizeDB  = 0xFB
	opExpiryMS  = 0xFC
	opExpirySec = 0xFD
	opEOF       = 0xFF
)

const magic = "REDIS"

// Load parses a complete snapshot payload and inserts every string
// entry into dst. Entries whose value type is one of the tolerated
// non-string types are skipped (structurally parsed, logged, and
// discarded) rather than inserted. Load never deletes existing keys in
// dst; it only inserts.
func Load(payload []byte, dst *store.Store, log *logrus.Logger) error {
	if len(payload) < 9 || string(payload[:5]) != magic {
		return ErrMalformedSnapshot
	}
	pos := 9 // magic + 4-digit version

	for pos < len(payload) {
		switch payload[pos] {
		case opEOF:
			pos++
			return verifyChecksum(payload, pos)

		case opAux:
			var err error
			_, pos, err = readString(payload, pos+1)
			if err != nil {
				return err
			}
			_, pos, err = readString(payload, pos)
			if err != nil {
				return err
			}

		case opSelectDB:
			dbLen, next, err := readLength(payload, pos+1)
			if err != nil || dbLen.kind != lengthPlain {
				return ErrMalformedSnapshot
			}
			pos = next

		case opResizeDB:
			l1, next, err := readLength(payload, pos+1)
			if err != nil || l1.kind != lengthPlain {
				return ErrMalformedSnapshot
			}
			l2, next2, err := readLength(payload, next)
			if err != nil || l2.kind != lengthPlain {
				return ErrMalformedSnapshot
			}
			pos = next2

		default:
			next, err := readEntry(payload, pos, dst, log)
			if err != nil {
				return err
			}
			pos = next
		}
	}
	// Ran off the end without an EOF opcode: the payload is truncated.
	return ErrMalformedSnapshot
}

// readEntry parses one optional-expiry + type-byte + key (+ value)
// entry, inserting it into dst when the type is string and the
// deadline has not already passed.
func readEntry(buf []byte, pos int, dst *store.Store, log *logrus.Logger) (int, error) {
	var hasTTL bool
	var deadline time.Time

	switch buf[pos] {
	case opExpiryMS:
		if pos+9 > len(buf) {
			return pos, ErrMalformedSnapshot
		}
		ms := binary.LittleEndian.Uint64(buf[pos+1 : pos+9])
		deadline = time.UnixMilli(int64(ms))
		hasTTL = true
		pos += 9
	case opExpirySec:
		if pos+5 > len(buf) {
			return pos, ErrMalformedSnapshot
		}
		sec := binary.LittleEndian.Uint32(buf[pos+1 : pos+5])
		deadline = time.Unix(int64(sec), 0)
		hasTTL = true
		pos += 5
	}

	if pos >= len(buf) {
		return pos, ErrMalformedSnapshot
	}
	valueType := buf[pos]
	pos++

	key, next, err := readString(buf, pos)
	if err != nil {
		return pos, err
	}
	pos = next

	switch valueType {
	case 0:
		value, next, err := readString(buf, pos)
		if err != nil {
			return pos, err
		}
		pos = next
		if hasTTL && !deadline.After(time.Now()) {
			log.WithField("key", string(key)).Debug("snapshot: dropping already-expired key on load")
			return pos, nil
		}
		dst.SetAbsolute(string(key), value, deadline, hasTTL)
		return pos, nil

	case 1, 2: // list, set: length-encoded count + N strings
		count, next, err := readLength(buf, pos)
		if err != nil || count.kind != lengthPlain {
			return pos, ErrMalformedSnapshot
		}
		pos = next
		for i := uint64(0); i < count.value; i++ {
			_, next, err := readString(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = next
		}
		log.WithField("key", string(key)).Debug("snapshot: skipping non-string value")
		return pos, nil

	case 3: // sorted set: count pairs of (member-string, score)
		count, next, err := readLength(buf, pos)
		if err != nil || count.kind != lengthPlain {
			return pos, ErrMalformedSnapshot
		}
		pos = next
		for i := uint64(0); i < count.value; i++ {
			_, next, err := readString(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = next

			next, err = skipZsetScore(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = next
		}
		log.WithField("key", string(key)).Debug("snapshot: skipping non-string value")
		return pos, nil

	case 4: // hash: length-encoded count + 2N strings (field/value pairs)
		count, next, err := readLength(buf, pos)
		if err != nil || count.kind != lengthPlain {
			return pos, ErrMalformedSnapshot
		}
		pos = next
		for i := uint64(0); i < count.value*2; i++ {
			_, next, err := readString(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = next
		}
		log.WithField("key", string(key)).Debug("snapshot: skipping non-string value")
		return pos, nil

	case 9, 10, 11, 12: // zipmap/ziplist/intset/encoded-sorted-set: opaque blob
		_, next, err := readString(buf, pos)
		if err != nil {
			return pos, err
		}
		log.WithField("key", string(key)).Debug("snapshot: skipping non-string value")
		return next, nil

	case 13: // encoded hash: opaque blob
		_, next, err := readString(buf, pos)
		if err != nil {
			return pos, err
		}
		log.WithField("key", string(key)).Debug("snapshot: skipping non-string value")
		return next, nil

	case 14: // quicklist: count + N opaque ziplist blobs
		count, next, err := readLength(buf, pos)
		if err != nil || count.kind != lengthPlain {
			return pos, ErrMalformedSnapshot
		}
		pos = next
		for i := uint64(0); i < count.value; i++ {
			_, next, err := readString(buf, pos)
			if err != nil {
				return pos, err
			}
			pos = next
		}
		log.WithField("key", string(key)).Debug("snapshot: skipping non-string value")
		return pos, nil

	default:
		return pos, ErrMalformedSnapshot
	}
}

// skipZsetScore skips one sorted-set member score: a single byte that
// is either the sentinel 0xFD/0xFE/0xFF (NaN/+inf/-inf, no further
// bytes) or a literal length in 0-252 naming the following run of
// ASCII-digit bytes. This is NOT the general RDB length encoding —
// sorted-set scores use their own single-byte-length scheme, so
// readLength/readString (whose top-2-bits mode selector would
// misinterpret 0xFD-0xFF as an unsupported "special" subtype) do not
// apply here.
func skipZsetScore(buf []byte, pos int) (int, error) {
	if pos >= len(buf) {
		return pos, ErrMalformedSnapshot
	}
	b := buf[pos]
	switch b {
	case 0xFD, 0xFE, 0xFF:
		return pos + 1, nil
	}
	end := pos + 1 + int(b)
	if end < pos || end > len(buf) {
		return pos, ErrMalformedSnapshot
	}
	return end, nil
}

func verifyChecksum(payload []byte, pos int) error {
	if pos+8 > len(payload) {
		return ErrMalformedSnapshot
	}
	stored := binary.LittleEndian.Uint64(payload[pos : pos+8])
	if stored == 0 {
		return nil
	}
	computed := checksum(payload[:pos])
	if stored != computed {
		return ErrChecksumMismatch
	}
	return nil
}
