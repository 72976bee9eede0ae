package queryparams

import (
	"fmt"
	"reflect"
	"slices"
)

// Entry is the stored form of one parameter: either a single string or an
// ordered list of strings. The zero Entry is Single("").
type Entry struct {
	values []string
	multi  bool
}

// IsMulti reports whether the entry was stored as a list.
func (e Entry) IsMulti() bool {
	return e.multi
}

// Last returns the display value: the single value, or the last element of a
// list. An empty list yields "".
func (e Entry) Last() string {
	if len(e.values) == 0 {
		return ""
	}
	return e.values[len(e.values)-1]
}

// Values returns a copy of the entry as a list. A single value becomes a
// one-element list; an empty multi entry returns an empty, non-nil slice.
func (e Entry) Values() []string {
	if !e.multi && len(e.values) == 0 {
		return []string{""}
	}
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out
}

// String formats the entry for logs.
func (e Entry) String() string {
	if e.multi {
		return fmt.Sprintf("%q", e.values)
	}
	return fmt.Sprintf("%q", e.Last())
}

// Value is the input to Store.Set. Callers pick the shape explicitly with
// Single, Multi, Scalar or Strings, or let ValueOf decide from the dynamic
// type.
type Value struct {
	entry Entry
}

// Single stores s as a single value.
func Single(s string) Value {
	return Value{entry: Entry{values: []string{s}}}
}

// Multi stores vs, in order, as a list. Multi() stores an empty list.
func Multi(vs ...string) Value {
	return Value{entry: Entry{values: slices.Clone(vs), multi: true}}
}

// Scalar stores the string form of v as a single value.
func Scalar(v any) Value {
	return Single(fmt.Sprint(v))
}

// Strings stores the string form of every element of vs as a list.
func Strings[T any](vs []T) Value {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = fmt.Sprint(v)
	}
	return Value{entry: Entry{values: out, multi: true}}
}

// ValueOf picks the shape from the dynamic type of v: slices and arrays
// (other than []byte) become lists, everything else a single value.
// A Value passed in is returned unchanged.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return Single(x)
	case []string:
		return Multi(x...)
	case []byte:
		return Single(string(x))
	case nil:
		return Scalar(x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Scalar(v)
	}
	out := make([]string, rv.Len())
	for i := range out {
		out[i] = fmt.Sprint(rv.Index(i).Interface())
	}
	return Value{entry: Entry{values: out, multi: true}}
}
