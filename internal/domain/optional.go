package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Opt is a field that upstream may omit, send as null, or send with an
// unexpected type. All three decode as absent.
type Opt[T any] struct {
	Value T
	Set   bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{Value: v, Set: true}
}

// UnmarshalJSON never fails so that one odd field cannot drop a whole record.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	var zero T
	o.Value, o.Set = zero, false
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	o.Value, o.Set = v, true
	return nil
}

// MarshalJSON writes null for an absent value.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Or returns the value when present, def otherwise.
func (o Opt[T]) Or(def T) T {
	if !o.Set {
		return def
	}
	return o.Value
}

// Number decodes both JSON numbers and numeric strings. The catalog is not
// consistent about which one it sends for counts, NOVA groups and scores.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// TagList decodes either a JSON array of tags or a comma-joined string.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = trimTags(list)
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	if strings.TrimSpace(joined) == "" {
		*t = TagList{}
		return nil
	}
	*t = trimTags(strings.Split(joined, ","))
	return nil
}

func trimTags(tags []string) TagList {
	out := make(TagList, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
