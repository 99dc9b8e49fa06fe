package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Key identifies one cached query: an operation name plus its parameters.
// Two keys built from the same parameters in any order are equal.
type Key struct {
	op     string
	params string
}

// NewKey builds a key from an operation name and alternating name/value pairs.
// A trailing name without a value is recorded with an empty value.
func NewKey(op string, kv ...string) Key {
	v := url.Values{}
	for i := 0; i < len(kv); i += 2 {
		val := ""
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		v.Set(kv[i], val)
	}
	return KeyFromValues(op, v)
}

// KeyFromValues builds a key from an operation name and query parameters.
func KeyFromValues(op string, v url.Values) Key {
	if len(v) == 0 {
		return Key{op: op}
	}
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		vals := append([]string(nil), v[name]...)
		sort.Strings(vals)
		b.WriteString(url.QueryEscape(name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(strings.Join(vals, ",")))
	}
	return Key{op: op, params: b.String()}
}

// Op returns the operation name.
func (k Key) Op() string { return k.op }

// String returns the canonical form "op" or "op?a=1&b=2".
func (k Key) String() string {
	if k.params == "" {
		return k.op
	}
	return k.op + "?" + k.params
}

// joinIDs renders ids in the given order, which is significant for comparisons.
func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
