package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID 生成实体 ID（所有存储后端共用同一格式）
func NewID() string {
	return uuid.NewString()
}

// ValidID 判断 ID 格式是否合法
func ValidID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Date accepts RFC 3339 timestamps and bare YYYY-MM-DD dates in request bodies.
// An empty string decodes to the zero time, which clears optional dates.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}
