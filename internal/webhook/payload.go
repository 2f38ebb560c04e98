// Package webhook normalizes loosely shaped CRM webhook payloads.
// Everything here is pure: no storage, no clock.
package webhook

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var ErrNotObject = errors.New("payload must be a JSON object")

// Payload is an untyped JSON object as received from the CRM.
type Payload map[string]any

// Decode parses body into a Payload. Numbers are kept as json.Number so
// numeric ids survive without float rounding.
func Decode(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: trailing data")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Payload(obj), nil
}

// normalizeKey folds case and drops separators, so utm_source, utmSource,
// UtmSource, UTM-SOURCE and utmsource compare equal.
func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lookup returns the value stored under any spelling of key (key is
// already normalized). An exact hit wins; otherwise keys are visited in
// sorted order so the result does not depend on map iteration.
func lookup(obj map[string]any, key string) (any, bool) {
	values := lookupAll(obj, key)
	if len(values) == 0 {
		return nil, false
	}
	return values[0], true
}

// lookupAll returns the values of every spelling of key: the exact hit
// first, then the other matching keys in sorted order.
func lookupAll(obj map[string]any, key string) []any {
	var values []any
	if v, ok := obj[key]; ok {
		values = append(values, v)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k != key && normalizeKey(k) == key {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		values = append(values, obj[k])
	}
	return values
}

// object resolves a nested container. Arrays of {key|name|id, value}
// entries, the usual shape of custom fields, are folded into an object.
func object(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		folded := make(map[string]any, len(t))
		for _, item := range t {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name := firstString(entry, "key", "fieldkey", "name", "id")
			if name == "" {
				continue
			}
			value, ok := lookupAny(entry, "value", "fieldvalue")
			if !ok {
				continue
			}
			if _, exists := folded[name]; !exists {
				folded[name] = value
			}
		}
		return folded
	}
	return nil
}

func lookupAny(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := lookup(obj, k); ok {
			return v, true
		}
	}
	return nil, false
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		for _, v := range lookupAll(obj, k) {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringify converts scalar JSON values to trimmed strings. Objects, arrays,
// null and blank strings are absent.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
