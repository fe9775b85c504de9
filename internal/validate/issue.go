package validate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Issue codes reported by the built-in validators.
const (
	CodeInvalidType = "invalid_type"
	CodeInvalidEnum = "invalid_enum_value"
	CodeUnknownKey  = "unrecognized_key"
	CodeCustom      = "custom"
)

// Path locates a value inside a response payload. Elements are field names
// (string) or list indexes (int).
type Path []any

func (p Path) String() string {
	var b strings.Builder
	for i, el := range p {
		switch v := el.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(v) + "]")
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprint(&b, v)
		}
	}
	return b.String()
}

// Issue is a single validation failure.
type Issue struct {
	Path    Path   `json:"path,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return i.Path.String() + ": " + i.Message
}

// Issues is the diagnostic trail produced by a failed validation. It is the
// only error type returned by the validators in this package.
type Issues []Issue

func (is Issues) Error() string {
	if len(is) == 1 {
		return is[0].String()
	}
	msg := fmt.Sprintf("%d validation issues:", len(is))
	for _, i := range is {
		msg += "\n- " + i.String()
	}
	return msg
}

func issue(code, format string, args ...any) Issues {
	return Issues{{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// Prefix rewrites the paths of err's issues to sit under el. Errors that are
// not Issues become a single custom issue at el.
func Prefix(el any, err error) Issues {
	is, ok := err.(Issues)
	if !ok {
		return Issues{{Path: Path{el}, Code: CodeCustom, Message: err.Error()}}
	}
	out := make(Issues, len(is))
	for i, iss := range is {
		p := make(Path, 0, len(iss.Path)+1)
		p = append(p, el)
		p = append(p, iss.Path...)
		out[i] = Issue{Path: p, Code: iss.Code, Message: iss.Message}
	}
	return out
}

// received names the JSON kind of v for diagnostics.
func received(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
