package cache

import (
	"crypto/md5"
	"encoding/hex"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"f1stats/internal/shared/logger"
)

// keySeparator sits between per-argument strings so ("1", "2") and ("12") differ.
const keySeparator = "\x1f"

// KeyMarshaler lets a type that is not a plain scalar or container opt into key derivation.
type KeyMarshaler interface {
	CacheKey() string
}

// Key derives a stable cache key from call arguments.
//
// nil arguments are skipped. Strings, booleans and numbers are formatted directly,
// maps are rendered as key-sorted pairs, slices are rendered sorted (order-insensitive)
// and arrays keep their order. Any other argument makes the call uncacheable and ok is false.
func Key(args ...any) (key string, ok bool) {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if isNil(arg) {
			continue
		}
		part, ok := keyPart(arg)
		if !ok {
			return "", false
		}
		parts = append(parts, part)
	}
	sum := md5.Sum([]byte(strings.Join(parts, keySeparator)))
	return hex.EncodeToString(sum[:]), true
}

// MethodKey is Key for bound calls: args[0] is treated as the receiver and dropped
// unless it is itself an eligible value.
func MethodKey(args ...any) (string, bool) {
	if len(args) > 0 && !Eligible(args[0]) {
		args = args[1:]
	}
	return Key(args...)
}

// Eligible reports whether v can take part in key derivation.
func Eligible(v any) bool {
	if isNil(v) {
		return true
	}
	_, ok := keyPart(v)
	return ok
}

func keyPart(arg any) (string, bool) {
	if km, ok := arg.(KeyMarshaler); ok {
		return km.CacheKey(), true
	}
	return valuePart(reflect.ValueOf(arg))
}

func valuePart(v reflect.Value) (string, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return "nil", true
		}
		v = v.Elem()
	}
	if v.CanInterface() {
		if km, ok := v.Interface().(KeyMarshaler); ok {
			return km.CacheKey(), true
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String(), true
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64), true
	case reflect.Complex64, reflect.Complex128:
		return strconv.FormatComplex(v.Complex(), 'g', -1, 128), true
	case reflect.Slice:
		if v.IsNil() {
			return "nil", true
		}
		items, ok := elementParts(v)
		if !ok {
			return "", false
		}
		// sort a private copy; the caller's slice is never reordered
		sort.Strings(items)
		return "[" + strings.Join(items, ", ") + "]", true
	case reflect.Array:
		items, ok := elementParts(v)
		if !ok {
			return "", false
		}
		return "(" + strings.Join(items, ", ") + ")", true
	case reflect.Map:
		return mapPart(v)
	default:
		return "", false
	}
}

// elementPart renders a value nested in a container. Strings and CacheKey
// results are quoted so separators inside them cannot merge elements.
func elementPart(v reflect.Value) (string, bool) {
	part, ok := valuePart(v)
	if !ok {
		return "", false
	}
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return strconv.Quote(part), true
	}
	if v.CanInterface() {
		if _, isKM := v.Interface().(KeyMarshaler); isKM {
			return strconv.Quote(part), true
		}
	}
	return part, true
}

func elementParts(v reflect.Value) ([]string, bool) {
	items := make([]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		part, ok := elementPart(v.Index(i))
		if !ok {
			return nil, false
		}
		items[i] = part
	}
	return items, true
}

// mapPart renders a mapping as key-sorted pairs. A map with empty-struct values is a set.
func mapPart(v reflect.Value) (string, bool) {
	if v.IsNil() {
		return "nil", true
	}
	elemType := v.Type().Elem()
	isSet := elemType.Kind() == reflect.Struct && elemType.NumField() == 0

	type pair struct{ k, v string }
	pairs := make([]pair, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k, ok := elementPart(iter.Key())
		if !ok {
			return "", false
		}
		if isSet {
			pairs = append(pairs, pair{k: k})
			continue
		}
		val, ok := elementPart(iter.Value())
		if !ok {
			return "", false
		}
		pairs = append(pairs, pair{k: k, v: val})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })

	items := make([]string, len(pairs))
	for i, p := range pairs {
		if isSet {
			items[i] = p.k
		} else {
			items[i] = "(" + p.k + ", " + p.v + ")"
		}
	}
	return "{" + strings.Join(items, ", ") + "}", true
}

func isNil(arg any) bool {
	if arg == nil {
		return true
	}
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// Memo short-circuits calls whose arguments were seen before.
// The zero Memo, a nil *Memo and Disabled() all call straight through.
type Memo struct {
	cache *Cache
}

// NewMemo memoizes into c.
func NewMemo(c *Cache) *Memo {
	return &Memo{cache: c}
}

// Disabled returns a Memo that never reads or writes the cache.
func Disabled() *Memo {
	return &Memo{}
}

// Enabled reports whether calls go through the cache.
func (m *Memo) Enabled() bool {
	return m != nil && m.cache != nil
}

// Call returns the cached result for args or runs fn and stores its result.
// Errors and nil results are never stored.
func Call[T any](m *Memo, fn func() (T, error), args ...any) (T, error) {
	if !m.Enabled() {
		return fn()
	}
	key, ok := Key(args...)
	return call(m, key, ok, fn)
}

// CallMethod is Call for bound calls, see MethodKey.
func CallMethod[T any](m *Memo, fn func() (T, error), args ...any) (T, error) {
	if !m.Enabled() {
		return fn()
	}
	key, ok := MethodKey(args...)
	return call(m, key, ok, fn)
}

func call[T any](m *Memo, key string, cacheable bool, fn func() (T, error)) (T, error) {
	l := logger.WithComponent("Memo")
	if !cacheable {
		l.Debug().Str("prefix", m.cache.Prefix()).Msg("Arguments are not cacheable, calling through.")
		return fn()
	}

	var cached T
	hit, err := m.cache.Get(key, &cached)
	if err != nil {
		l.Warn().Err(err).Str("key", key).Msg("Failed to read cache entry, calling through.")
	} else if hit {
		l.Debug().Str("prefix", m.cache.Prefix()).Str("key", key).Msg("Cache hit.")
		return cached, nil
	}

	value, err := fn()
	if err != nil {
		return value, err
	}
	if isNil(any(value)) {
		return value, nil
	}
	if _, err := m.cache.Put(key, value); err != nil {
		l.Warn().Err(err).Str("key", key).Msg("Failed to store cache entry.")
	}
	return value, nil
}
