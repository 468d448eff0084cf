package scopager

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint returns a short, stable hash of a filter expression. It is
// embedded in cursors so that a token issued under one filter cannot silently
// resume a scan under another. Returns "" for a nil filter.
//
// Equal trees always fingerprint equal; the rendering is canonical (operator
// names, lowercased identifiers, kind-tagged values), so formatting of the
// original request text does not matter.
func Fingerprint(expr Expr) string {
	if expr == nil {
		return ""
	}

	sum := sha256.Sum256([]byte(normalizeExpr(expr)))

	return hex.EncodeToString(sum[:8])
}

func normalizeExpr(expr Expr) string {
	switch n := expr.(type) {
	case AndExpr:
		return "and(" + normalizeExpr(n.Left) + "," + normalizeExpr(n.Right) + ")"
	case OrExpr:
		return "or(" + normalizeExpr(n.Left) + "," + normalizeExpr(n.Right) + ")"
	case NotExpr:
		return "not(" + normalizeExpr(n.Inner) + ")"
	case CompareExpr:
		return "cmp(" + n.Op.String() + "," + normalizeExpr(n.Left) + "," + normalizeExpr(n.Right) + ")"
	case InExpr:
		items := make([]string, 0, len(n.List))
		for _, item := range n.List {
			items = append(items, normalizeExpr(item))
		}

		return "in(" + normalizeExpr(n.Left) + ",[" + strings.Join(items, ",") + "])"
	case FuncExpr:
		args := make([]string, 0, len(n.Args))
		for _, arg := range n.Args {
			args = append(args, normalizeExpr(arg))
		}

		return "fn(" + strings.ToLower(n.Name) + "," + strings.Join(args, ",") + ")"
	case Ident:
		return "id(" + strings.ToLower(n.Name) + ")"
	case Literal:
		return "val(" + normalizeValue(n.Value) + ")"
	default:
		return fmt.Sprintf("unknown(%T)", expr)
	}
}

func normalizeValue(v Value) string {
	switch v.kind {
	case ValueNull:
		return "null"
	case ValueBool:
		return fmt.Sprintf("bool:%t", v.b)
	case ValueNumber:
		return "number:" + v.n.String()
	case ValueString:
		return "string:" + v.s
	case ValueUUID:
		return "uuid:" + v.u.String()
	case ValueDateTime:
		return "datetime:" + v.t.UTC().Format("2006-01-02T15:04:05.999999999Z07:00")
	case ValueDate:
		return "date:" + v.t.Format(_dateLayout)
	case ValueTime:
		return "time:" + v.t.Format(_timeLayout)
	default:
		return "unknown"
	}
}
