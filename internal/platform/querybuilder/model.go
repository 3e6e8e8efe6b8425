package querybuilder

import (
	"errors"
	"reflect"
	"strings"
	"sync"
)

// modelFields caches the db-tagged field layout per struct type.
var modelFields sync.Map

type modelField struct {
	index  int
	column string
}

// InsertModel inserts one row built from the `db` tags of model's exported
// fields. Untagged fields and `db:"-"` are skipped.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", nil, errors.New("insert model: nil pointer")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", nil, errors.New("insert model: not a struct")
	}

	fields := fieldsOf(v.Type())
	if len(fields) == 0 {
		return "", nil, errors.New("insert model: no db columns")
	}
	cols := make([]string, len(fields))
	vals := make([]any, len(fields))
	for i, f := range fields {
		cols[i] = f.column
		vals[i] = v.Field(f.index).Interface()
	}
	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

func fieldsOf(t reflect.Type) []modelField {
	if cached, ok := modelFields.Load(t); ok {
		return cached.([]modelField)
	}

	fields := make([]modelField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, modelField{index: i, column: column})
	}
	modelFields.Store(t, fields)
	return fields
}
