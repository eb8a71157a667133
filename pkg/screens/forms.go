package screens

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// FieldKind is the coercion applied to a submitted form value.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindDecimal
	KindBool
	KindIntList
	KindStringList
	KindJSON // structured value, submitted as a JSON string in form bodies
)

// Field describes one form field of an entity screen. RefTable, when set,
// names the lookup table the value must reference.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	RefTable string
}

// FormError collects field-level validation failures.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e *FormError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// parseForm coerces a form-encoded body into a typed payload map per the
// field list. Absent optional fields are omitted so partial updates keep the
// stored values. List fields read repeated values (field and "field[]").
func parseForm(r *http.Request, fields []Field) (map[string]any, error) {
	if err := r.ParseForm(); err != nil {
		return nil, &FormError{Fields: map[string]string{"_body": "malformed form body"}}
	}

	payload := make(map[string]any, len(fields))
	var formErr FormError

	for _, f := range fields {
		switch f.Kind {
		case KindIntList, KindStringList:
			values := r.PostForm[f.Name]
			if len(values) == 0 {
				values = r.PostForm[f.Name+"[]"]
			}
			if _, present := r.PostForm[f.Name]; !present {
				if _, bracket := r.PostForm[f.Name+"[]"]; !bracket {
					if f.Required {
						formErr.add(f.Name, "required")
					}
					continue
				}
			}
			if f.Kind == KindStringList {
				list := make([]any, 0, len(values))
				for _, v := range values {
					if v != "" {
						list = append(list, v)
					}
				}
				payload[f.Name] = list
				continue
			}
			list := make([]any, 0, len(values))
			for _, v := range values {
				if v == "" {
					continue
				}
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					formErr.add(f.Name, "must be a list of ids")
					break
				}
				list = append(list, float64(n))
			}
			payload[f.Name] = list

		default:
			raw, present := r.PostForm[f.Name]
			if !present || len(raw) == 0 {
				if f.Required {
					formErr.add(f.Name, "required")
				}
				continue
			}
			value := strings.TrimSpace(raw[0])
			if value == "" {
				if f.Required {
					formErr.add(f.Name, "required")
					continue
				}
				payload[f.Name] = nil
				continue
			}
			coerced, err := coerceValue(value, f.Kind)
			if err != nil {
				formErr.add(f.Name, err.Error())
				continue
			}
			payload[f.Name] = coerced
		}
	}

	if len(formErr.Fields) > 0 {
		return nil, &formErr
	}
	return payload, nil
}

func coerceValue(value string, kind FieldKind) (any, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("must be a number")
		}
		return float64(n), nil
	case KindDecimal:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("must be a decimal number")
		}
		return n, nil
	case KindBool:
		switch strings.ToLower(value) {
		case "true", "on", "1", "yes":
			return true, nil
		case "false", "off", "0", "no":
			return false, nil
		}
		return nil, fmt.Errorf("must be a boolean")
	case KindJSON:
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return nil, fmt.Errorf("must be valid JSON")
		}
		return decoded, nil
	default:
		return value, nil
	}
}
