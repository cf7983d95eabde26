// Package substitute resolves ${VAR} placeholders in nested document values.
package substitute

import (
	"os"
	"regexp"

	"github.com/instctl/instctl/pkg/errors"
)

// placeholderRe matches ${NAME} occurrences in a string.
var placeholderRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Substitute recursively resolves ${NAME} placeholders in value. Mappings and
// sequences are walked; strings are interpolated; other scalars pass through.
// The process environment takes precedence over envMap. When a name resolves
// in neither source the operation fails, unless allowMissing is set, in which
// case the placeholder is left verbatim.
//
// The result is a deep copy; the input is never mutated.
func Substitute(value interface{}, envMap map[string]string, allowMissing bool) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			resolved, err := Substitute(inner, envMap, allowMissing)
			if err != nil {
				return nil, err
			}
			out[key] = resolved
		}
		return out, nil

	case []interface{}:
		out := make([]interface{}, len(v))
		for i, inner := range v {
			resolved, err := Substitute(inner, envMap, allowMissing)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil

	case string:
		return substituteString(v, envMap, allowMissing)

	default:
		return value, nil
	}
}

// String resolves placeholders in a single string value.
func String(s string, envMap map[string]string, allowMissing bool) (string, error) {
	return substituteString(s, envMap, allowMissing)
}

func substituteString(s string, envMap map[string]string, allowMissing bool) (string, error) {
	var missing string

	result := placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if value, ok := envMap[name]; ok {
			return value
		}

		if missing == "" {
			missing = name
		}
		return match
	})

	if missing != "" && !allowMissing {
		return "", errors.MissingVariableError(missing)
	}
	return result, nil
}
