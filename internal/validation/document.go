package validation

import (
	"maps"
	"slices"
	"time"
)

// Document is the field view of a record or patch, keyed by JSON field name.
// A key that is absent was not sent; a key holding a zero value was sent empty.
type Document map[string]any

// Has 字段是否出现
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Keys 有序字段名
func (d Document) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

// String 返回字符串字段，缺失时为空
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Float 返回数值字段
func (d Document) Float(key string) float64 {
	f, _ := d[key].(float64)
	return f
}

// FloatPtr 返回可选数值字段
func (d Document) FloatPtr(key string) *float64 {
	f, ok := d[key].(float64)
	if !ok {
		return nil
	}
	return &f
}

// Time 返回时间字段
func (d Document) Time(key string) time.Time {
	t, _ := d[key].(time.Time)
	return t
}

// TimePtr 返回可选时间字段
func (d Document) TimePtr(key string) *time.Time {
	t, ok := d[key].(time.Time)
	if !ok || t.IsZero() {
		return nil
	}
	return &t
}

// Strings 返回字符串数组字段
func (d Document) Strings(key string) []string {
	s, _ := d[key].([]string)
	return s
}
