package resp

import (
	"strconv"
	"strings"
)

// AsString renders a Message the way a command handler sees its
// arguments: BulkString and SimpleString messages decode directly to
// their text, and every other shape falls back to a lossy rendering
// (aggregates as comma-joined elements) good enough for logging but not
// round-tripped back through Parse.
func AsString(m Message) string {
	switch m.Type {
	case TypeSimpleString, TypeSimpleError:
		return m.Str
	case TypeBulkString:
		if m.Null {
			return ""
		}
		return string(m.Bulk)
	case TypeInteger:
		return strconv.FormatInt(m.Int, 10)
	case TypeDouble:
		return formatDouble(m.Dbl)
	case TypeBigNumber:
		sign := ""
		if m.BigSign == '-' {
			sign = "-"
		}
		return sign + string(m.BigDigit)
	case TypeBoolean:
		if m.Bool {
			return "t"
		}
		return "f"
	case TypeNull:
		return ""
	case TypeVerbatimString:
		return string(m.VBody)
	case TypeArray, TypeSet, TypePush:
		parts := make([]string, 0, len(m.Elems))
		for _, e := range m.Elems {
			parts = append(parts, AsString(e))
		}
		return strings.Join(parts, ",")
	case TypeMap:
		parts := make([]string, 0, len(m.Pairs))
		for _, p := range m.Pairs {
			parts = append(parts, AsString(p.Key)+":"+AsString(p.Value))
		}
		return strings.Join(parts, ",")
	case TypeSnapshot:
		return string(m.Snapshot)
	}
	return ""
}
