// Package comparer contains the default [domain.Comparer] implementation.
//
// It orders the value kinds a document field may hold. Mixed kinds compare
// by a fixed rank (nil < numbers < strings < booleans < instants) so that
// in-memory sorts stay total over heterogeneous collections.
package comparer

import (
	"cmp"
	"time"

	"github.com/porolink/porobase/domain"
)

// Comparer implements [domain.Comparer].
type Comparer struct{}

// NewComparer returns a new implementation of [domain.Comparer].
func NewComparer() domain.Comparer {
	return &Comparer{}
}

const (
	rankNil = iota
	rankNumber
	rankString
	rankBool
	rankTime
)

// Compare implements [domain.Comparer].
func (c *Comparer) Compare(a, b any) (int, error) {
	ra, va, okA := c.classify(a)
	rb, vb, okB := c.classify(b)
	if !okA || !okB {
		return 0, domain.ErrCannotCompare{A: a, B: b}
	}
	if ra != rb {
		return cmp.Compare(ra, rb), nil
	}

	switch ra {
	case rankNil:
		return 0, nil
	case rankNumber:
		return cmp.Compare(va.(float64), vb.(float64)), nil
	case rankString:
		return cmp.Compare(va.(string), vb.(string)), nil
	case rankBool:
		x, y := va.(bool), vb.(bool)
		if x == y {
			return 0, nil
		}
		if !x {
			return -1, nil
		}
		return 1, nil
	default:
		return va.(time.Time).Compare(vb.(time.Time)), nil
	}
}

// classify maps a value onto its rank and canonical comparison form.
func (c *Comparer) classify(v any) (rank int, canonical any, ok bool) {
	switch t := v.(type) {
	case nil:
		return rankNil, nil, true
	case int:
		return rankNumber, float64(t), true
	case int8:
		return rankNumber, float64(t), true
	case int16:
		return rankNumber, float64(t), true
	case int32:
		return rankNumber, float64(t), true
	case int64:
		return rankNumber, float64(t), true
	case uint:
		return rankNumber, float64(t), true
	case uint8:
		return rankNumber, float64(t), true
	case uint16:
		return rankNumber, float64(t), true
	case uint32:
		return rankNumber, float64(t), true
	case uint64:
		return rankNumber, float64(t), true
	case float32:
		return rankNumber, float64(t), true
	case float64:
		return rankNumber, t, true
	case string:
		return rankString, t, true
	case bool:
		return rankBool, t, true
	case time.Time:
		return rankTime, t, true
	case domain.Timestamp:
		return rankTime, t.Time(), true
	default:
		return 0, nil, false
	}
}
