package filter

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// String renders f as CQL text.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	var sb strings.Builder
	f.write(&sb)
	return sb.String()
}

func (f *Filter) write(sb *strings.Builder) {
	if !f.IsLeaf() {
		f.writeBranch(sb)
		return
	}

	switch op := f.Operator(); op {
	case OpIntersects:
		sb.WriteString("INTERSECTS(")
		sb.WriteString(f.Property)
		sb.WriteString(", ")
		sb.WriteString(f.Literal())
		sb.WriteString(")")
	case OpDWithin:
		sb.WriteString("DWITHIN(")
		sb.WriteString(f.Property)
		sb.WriteString(", ")
		sb.WriteString(f.Literal())
		sb.WriteString(", ")
		sb.WriteString(formatNumber(f.Distance))
		sb.WriteString(", meters)")
	case OpDuring:
		sb.WriteString(f.Property)
		sb.WriteString(" DURING ")
		if f.From != nil || f.To != nil {
			sb.WriteString(cast.ToString(f.From))
			sb.WriteString("/")
			sb.WriteString(cast.ToString(f.To))
		} else {
			sb.WriteString(f.Literal())
		}
	case OpRelative:
		sb.WriteString(f.Property)
		sb.WriteString(" = ")
		sb.WriteString(f.Literal())
	case OpAfter, OpBefore:
		sb.WriteString(f.Property)
		sb.WriteString(" ")
		sb.WriteString(string(op))
		sb.WriteString(" ")
		sb.WriteString(f.Literal())
	default:
		sb.WriteString(f.Property)
		sb.WriteString(" ")
		sb.WriteString(string(op))
		sb.WriteString(" ")
		sb.WriteString(formatValue(f.RawValue()))
	}
}

func (f *Filter) writeBranch(sb *strings.Builder) {
	var sep string
	switch f.NodeType() {
	case NodeAnd:
		sep = " AND "
	case NodeOr:
		sep = " OR "
	case NodeNotAnd:
		sb.WriteString("NOT ")
		sep = " AND "
	case NodeNotOr:
		sb.WriteString("NOT ")
		sep = " OR "
	default:
		sep = " " + f.Type + " "
	}

	if len(f.Filters) == 0 {
		if sep == " OR " {
			sb.WriteString("EXCLUDE")
		} else {
			sb.WriteString("INCLUDE")
		}
		return
	}

	sb.WriteString("(")
	for i, child := range f.Filters {
		if i > 0 {
			sb.WriteString(sep)
		}
		child.write(sb)
	}
	sb.WriteString(")")
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "''"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return formatNumber(v)
	case float32:
		return formatNumber(float64(v))
	}
	if isNumber(v) {
		return cast.ToString(v)
	}
	return "'" + strings.ReplaceAll(cast.ToString(v), "'", "''") + "'"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
