package scanner

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidDepth is returned for depth expressions that cannot be parsed.
var ErrInvalidDepth = errors.New("invalid depth expression")

// Depth is an inclusive range of directory depths relative to a search root.
// Files directly inside the root are at depth 0. A negative Max is unbounded.
type Depth struct {
	Min int
	Max int
}

// AnyDepth matches files at every depth.
var AnyDepth = Depth{Min: 0, Max: -1}

// ParseDepth parses comparator expressions like "< 2", "<= 1", "> 0", ">= 3",
// "== 1" or a bare "2" (equivalent to "== 2").
func ParseDepth(expr string) (Depth, error) {
	expr = strings.TrimSpace(expr)

	op := ""
	for _, candidate := range []string{"<=", ">=", "==", "<", ">", "="} {
		if strings.HasPrefix(expr, candidate) {
			op = candidate
			break
		}
	}

	n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(expr, op)))
	if err != nil || n < 0 {
		return Depth{}, errors.Wrapf(ErrInvalidDepth, "%q", expr)
	}

	switch op {
	case "<":
		if n == 0 {
			return Depth{}, errors.Wrapf(ErrInvalidDepth, "%q matches nothing", expr)
		}
		return Depth{Min: 0, Max: n - 1}, nil
	case "<=":
		return Depth{Min: 0, Max: n}, nil
	case ">":
		return Depth{Min: n + 1, Max: -1}, nil
	case ">=":
		return Depth{Min: n, Max: -1}, nil
	default:
		return Depth{Min: n, Max: n}, nil
	}
}

// Contains reports whether the given depth lies in the range.
func (d Depth) Contains(depth int) bool {
	return depth >= d.Min && (d.Max < 0 || depth <= d.Max)
}

// Descend reports whether directories at the given depth may still hold
// matching files.
func (d Depth) Descend(depth int) bool {
	return d.Max < 0 || depth <= d.Max
}

// Intersect narrows the range to the overlap with other.
func (d Depth) Intersect(other Depth) Depth {
	out := Depth{Min: max(d.Min, other.Min), Max: d.Max}
	switch {
	case d.Max < 0:
		out.Max = other.Max
	case other.Max >= 0:
		out.Max = min(d.Max, other.Max)
	}

	return out
}

func (d Depth) String() string {
	switch {
	case d.Max < 0:
		return ">= " + strconv.Itoa(d.Min)
	case d.Min == d.Max:
		return "== " + strconv.Itoa(d.Min)
	case d.Min == 0:
		return "<= " + strconv.Itoa(d.Max)
	default:
		return strconv.Itoa(d.Min) + ".." + strconv.Itoa(d.Max)
	}
}
