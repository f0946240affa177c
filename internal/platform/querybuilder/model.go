package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from a struct's db tags, one row per model.
// All models must share the same concrete type.
func InsertModel(table string, suffix Suffixer, models ...any) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("at least one model is required")
	}

	cols, vals, err := dbColumns(models[0])
	if err != nil {
		return "", nil, err
	}

	builder := InsertInto(table).Columns(cols...).Values(vals...)
	for _, model := range models[1:] {
		moreCols, moreVals, err := dbColumns(model)
		if err != nil {
			return "", nil, err
		}
		if len(moreCols) != len(cols) {
			return "", nil, fmt.Errorf("model column mismatch: %d vs %d", len(moreCols), len(cols))
		}
		builder.Values(moreVals...)
	}
	if suffix.sql != "" {
		builder.Suffix(suffix.sql, suffix.args...)
	}

	return builder.ToSQL()
}

// Suffixer carries an optional trailing clause for InsertModel.
type Suffixer struct {
	sql  string
	args []any
}

func WithSuffix(sql string, args ...any) Suffixer {
	return Suffixer{sql: sql, args: args}
}

func NoSuffix() Suffixer {
	return Suffixer{}
}

func dbColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be a struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
