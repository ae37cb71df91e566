// Package parameters handles the learners configuration Params: a map[string]string parsed from
// strings like "file=values.json,batch_size=64,verbose".
package parameters

import (
	"strconv"
	"strings"

	"github.com/janpfeifer/utttGo/internal/generics"
	"github.com/pkg/errors"
)

// Params represent generic configuration parameters.
type Params map[string]string

// NewFromConfigString parses a comma-separated list of key=value pairs.
// A key without "=" is set to the empty string (which reads as true for booleans).
func NewFromConfigString(config string) Params {
	params := make(Params)
	config = strings.TrimSpace(config)
	if config == "" {
		return params
	}
	for _, part := range strings.Split(config, ",") {
		key, value, _ := strings.Cut(part, "=") // Only the first '=' splits, values may contain '='.
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		params[key] = value
	}
	return params
}

// SplitModule splits a configuration like "table:file=x.json" into the module name ("table") and
// its parameters ("file=x.json"). Without ":" the whole config is the module name.
func SplitModule(config string) (module string, params Params) {
	module, rest, _ := strings.Cut(config, ":")
	return strings.TrimSpace(module), NewFromConfigString(rest)
}

// CheckAllUsed returns an error listing any parameters left in params, presumably unknown
// ones since the known ones are removed with PopParamOr.
func CheckAllUsed(params Params, module string) error {
	if len(params) == 0 {
		return nil
	}
	var keys []string
	for key := range generics.SortedKeys(params) {
		keys = append(keys, key)
	}
	return errors.Errorf("unknown parameter(s) for %q: %s", module, strings.Join(keys, ", "))
}

// PopParamOr is like GetParamOr, but it also deletes from the params map the retrieved parameter.
func PopParamOr[T interface {
	bool | int | float32 | float64 | string
}](params Params, key string, defaultValue T) (T, error) {
	value, err := GetParamOr(params, key, defaultValue)
	if err != nil {
		return value, err
	}
	delete(params, key)
	return value, nil
}

// GetParamOr attempts to parse a parameter to the given type if the key is present, or returns the defaultValue
// if not.
//
// For bool types, a key without a value is interpreted as true.
func GetParamOr[T interface {
	bool | int | float32 | float64 | string
}](params Params, key string, defaultValue T) (T, error) {
	value, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	var parsed any
	var err error
	switch any(defaultValue).(type) {
	case string:
		parsed = value
	case int:
		if value == "" {
			return defaultValue, nil
		}
		parsed, err = strconv.Atoi(value)
	case float32:
		if value == "" {
			return defaultValue, nil
		}
		var f64 float64
		f64, err = strconv.ParseFloat(value, 32)
		parsed = float32(f64)
	case float64:
		if value == "" {
			return defaultValue, nil
		}
		parsed, err = strconv.ParseFloat(value, 64)
	case bool:
		switch strings.ToLower(value) {
		case "", "true", "1": // Empty value is considered "true"
			parsed = true
		case "false", "0":
			parsed = false
		default:
			err = errors.New("not a boolean")
		}
	}
	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q as %T", key, value, defaultValue)
	}
	return parsed.(T), nil
}
