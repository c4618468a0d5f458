package messages

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bitrise-io/go-xcode/xcodeproject/serialized"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// lookup returns the raw value under key, or false when the key is absent or null.
func lookup(root serialized.Object, key string) (interface{}, bool, error) {
	value, err := root.Value(key)
	if err != nil {
		if serialized.IsKeyNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return value, value != nil, nil
}

func readString(root serialized.Object, key string) (*string, error) {
	if _, ok, err := lookup(root, key); err != nil || !ok {
		return nil, err
	}

	value, err := root.String(key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return &value, nil
}

func readInt(root serialized.Object, key string) (*int, error) {
	raw, ok, err := lookup(root, key)
	if err != nil || !ok {
		return nil, err
	}

	value, err := toInt(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return &value, nil
}

func readBool(root serialized.Object, key string) (*bool, error) {
	raw, ok, err := lookup(root, key)
	if err != nil || !ok {
		return nil, err
	}

	value, isBool := raw.(bool)
	if !isBool {
		return nil, errors.Errorf("failed to read %s: %v (%T) is not a boolean", key, raw, raw)
	}
	return &value, nil
}

func readDecimal(root serialized.Object, key string) (*decimal.Decimal, error) {
	raw, ok, err := lookup(root, key)
	if err != nil || !ok {
		return nil, err
	}

	var value decimal.Decimal
	switch v := raw.(type) {
	case json.Number:
		value, err = decimal.NewFromString(v.String())
	case string:
		value, err = decimal.NewFromString(v)
	case float64:
		value = decimal.NewFromFloat(v)
	case int:
		value = decimal.NewFromInt(int64(v))
	case int64:
		value = decimal.NewFromInt(v)
	case decimal.Decimal:
		value = v
	default:
		err = fmt.Errorf("%v (%T) is not a decimal", raw, raw)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return &value, nil
}

func readTime(root serialized.Object, key string) (*time.Time, error) {
	s, err := readString(root, key)
	if err != nil || s == nil {
		return nil, err
	}

	value, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", key)
	}
	return &value, nil
}

func readStringSlice(root serialized.Object, key string) ([]string, bool, error) {
	raw, ok, err := lookup(root, key)
	if err != nil || !ok {
		return nil, false, err
	}

	value, err := toStringSlice(raw)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read %s", key)
	}
	return value, true, nil
}

func readIntSlice(root serialized.Object, key string) ([]int, bool, error) {
	raw, ok, err := lookup(root, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var items []interface{}
	switch v := raw.(type) {
	case []int:
		return append([]int{}, v...), true, nil
	case []interface{}:
		items = v
	default:
		return nil, false, errors.Errorf("failed to read %s: %v (%T) is not a list", key, raw, raw)
	}

	value := make([]int, 0, len(items))
	for _, item := range items {
		i, err := toInt(item)
		if err != nil {
			return nil, false, errors.Wrapf(err, "failed to read %s", key)
		}
		value = append(value, i)
	}
	return value, true, nil
}

func readTraits(root serialized.Object, key string) (map[string][]string, bool, error) {
	raw, ok, err := lookup(root, key)
	if err != nil || !ok {
		return nil, false, err
	}

	var object map[string]interface{}
	switch v := raw.(type) {
	case map[string]interface{}:
		object = v
	case serialized.Object:
		object = v
	default:
		return nil, false, errors.Errorf("failed to read %s: %v (%T) is not an object", key, raw, raw)
	}

	names := make([]string, 0, len(object))
	for name := range object {
		names = append(names, name)
	}
	sort.Strings(names)

	traits := make(map[string][]string, len(object))
	for _, name := range names {
		values, err := toStringSlice(object[name])
		if err != nil {
			return nil, false, errors.Wrapf(err, "failed to read %s.%s", key, name)
		}
		traits[name] = values
	}
	return traits, true, nil
}

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int64ToInt(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, err
		}
		return int64ToInt(i)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		if v < math.MinInt || v >= -math.MinInt {
			return 0, fmt.Errorf("%v is out of the integer range", v)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("%v (%T) is not an integer", raw, raw)
	}
}

func int64ToInt(v int64) (int, error) {
	if v < math.MinInt || v > math.MaxInt {
		return 0, fmt.Errorf("%d is out of the integer range", v)
	}
	return int(v), nil
}

func toStringSlice(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, v...), nil
	case []interface{}:
		value := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%v (%T) is not a string", item, item)
			}
			value = append(value, s)
		}
		return value, nil
	default:
		return nil, fmt.Errorf("%v (%T) is not a list", raw, raw)
	}
}
