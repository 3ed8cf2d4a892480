package resp

import (
	"strconv"
)

// Serialize renders a Message back to its exact wire bytes. It is the
// inverse of Parse for every Type except Snapshot, which is an
// out-of-band framing the codec can emit but the server never receives
// as a command argument.
func Serialize(m Message) []byte {
	switch m.Type {
	case TypeSimpleString:
		return line('+', m.Str)

	case TypeSimpleError:
		return line('-', m.Str)

	case TypeInteger:
		return line(':', strconv.FormatInt(m.Int, 10))

	case TypeBulkString:
		if m.Null {
			return []byte("$-1\r\n")
		}
		return bulk('$', m.Bulk, true)

	case TypeBulkError:
		return bulk('!', m.Err, true)

	case TypeVerbatimString:
		payload := append([]byte(m.VEnc+":"), m.VBody...)
		return bulk('=', payload, true)

	case TypeDouble:
		return line(',', formatDouble(m.Dbl))

	case TypeBigNumber:
		sign := ""
		if m.BigSign == '-' {
			sign = "-"
		}
		return line('(', sign+string(m.BigDigit))

	case TypeBoolean:
		if m.Bool {
			return []byte("#t\r\n")
		}
		return []byte("#f\r\n")

	case TypeNull:
		return []byte("_\r\n")

	case TypeArray:
		return aggregate('*', m.Elems)

	case TypeSet:
		return aggregate('~', m.Elems)

	case TypePush:
		return aggregate('>', m.Elems)

	case TypeMap:
		out := line('%', strconv.Itoa(len(m.Pairs)))
		for _, p := range m.Pairs {
			out = append(out, Serialize(p.Key)...)
			out = append(out, Serialize(p.Value)...)
		}
		return out

	case TypeSnapshot:
		return bulk('$', m.Snapshot, false)
	}

	panic("resp: unknown message type")
}

func line(prefix byte, body string) []byte {
	out := make([]byte, 0, len(body)+3)
	out = append(out, prefix)
	out = append(out, body...)
	out = append(out, '\r', '\n')
	return out
}

func bulk(prefix byte, payload []byte, trailingCRLF bool) []byte {
	out := make([]byte, 0, len(payload)+16)
	out = append(out, prefix)
	out = append(out, strconv.Itoa(len(payload))...)
	out = append(out, '\r', '\n')
	out = append(out, payload...)
	if trailingCRLF {
		out = append(out, '\r', '\n')
	}
	return out
}

func aggregate(prefix byte, elems []Message) []byte {
	out := line(prefix, strconv.Itoa(len(elems)))
	for _, e := range elems {
		out = append(out, Serialize(e)...)
	}
	return out
}
