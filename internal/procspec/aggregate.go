package procspec

import (
	"fmt"

	"github.com/NatLabRockies/r2x-reeds/internal/frame"
)

// aggregator folds the values of one column within one group. Missing values
// are removed before the call; an empty slice never reaches an aggregator.
type aggregator func(values []any) (any, error)

var aggregators = map[string]aggregator{
	"sum":   aggSum,
	"mean":  aggMean,
	"min":   aggExtreme(-1),
	"max":   aggExtreme(1),
	"count": func(v []any) (any, error) { return int64(len(v)), nil },
	"first": func(v []any) (any, error) { return v[0], nil },
	"last":  func(v []any) (any, error) { return v[len(v)-1], nil },
}

// aggregate applies fn to values, skipping missing cells. All-missing yields nil.
func aggregate(fn string, values []any) (any, error) {
	present := make([]any, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}
	return aggregators[fn](present)
}

func aggSum(values []any) (any, error) {
	allInt := true
	var isum int64
	var fsum float64
	for _, v := range values {
		if i, ok := v.(int64); ok {
			isum += i
			fsum += float64(i)
			continue
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("non-numeric value %q", frame.String(v))
		}
		allInt = false
		fsum += f
	}
	if allInt {
		return isum, nil
	}
	return fsum, nil
}

func aggMean(values []any) (any, error) {
	s, err := aggSum(values)
	if err != nil {
		return nil, err
	}
	f, _ := frame.Float(s)
	return f / float64(len(values)), nil
}

func aggExtreme(sign int) aggregator {
	return func(values []any) (any, error) {
		best := values[0]
		for _, v := range values[1:] {
			if frame.Compare(v, best)*sign > 0 {
				best = v
			}
		}
		return best, nil
	}
}
