package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

type modelColumn struct {
	name  string
	value any
}

// UpsertModel inserts the db-tagged fields of model and, when a row with the
// same conflict column exists, overwrites every other column.
func UpsertModel(table, conflictColumn string, model any) (string, []any, error) {
	fields, err := modelColumns(model)
	if err != nil {
		return "", nil, err
	}

	cols := make([]string, 0, len(fields))
	vals := make([]any, 0, len(fields))
	updates := make([]string, 0, len(fields))
	hasConflict := false
	for _, f := range fields {
		cols = append(cols, f.name)
		vals = append(vals, f.value)
		if f.name == conflictColumn {
			hasConflict = true
			continue
		}
		updates = append(updates, f.name+" = EXCLUDED."+f.name)
	}
	if !hasConflict {
		return "", nil, fmt.Errorf("model has no %q column", conflictColumn)
	}

	suffix := "ON CONFLICT (" + conflictColumn + ") DO NOTHING"
	if len(updates) > 0 {
		suffix = "ON CONFLICT (" + conflictColumn + ") DO UPDATE SET " + strings.Join(updates, ", ")
	}

	return InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix).ToSQL()
}

func modelColumns(model any) ([]modelColumn, error) {
	v := reflect.Indirect(reflect.ValueOf(model))
	if !v.IsValid() {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", v.Kind())
	}

	t := v.Type()
	out := make([]modelColumn, 0, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		out = append(out, modelColumn{name: name, value: v.Field(i).Interface()})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("model has no db columns")
	}
	return out, nil
}
