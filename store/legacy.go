package store

import (
	"fmt"
)

// AssignmentKey keys legacy assignment records as
// "<heading>_<course>_<idx>_<deadline>_<idx>".
func AssignmentKey(idx int, record map[string]any) string {
	return fmt.Sprintf("%s_%s_%d_%s_%d",
		field(record, "heading"), field(record, "course"), idx, field(record, "deadline"), idx)
}

// ExamKey keys legacy exam records as "<course>_<context>_<idx>_<date>_<idx>".
func ExamKey(idx int, record map[string]any) string {
	return fmt.Sprintf("%s_%s_%d_%s_%d",
		field(record, "course"), field(record, "context"), idx, field(record, "date"), idx)
}

func field(record map[string]any, name string) string {
	v, ok := record[name]
	if !ok || v == nil {
		return "unknown"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
