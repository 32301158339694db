package logging

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// Key string
type Key string
type dummy struct{}

const trackedKeys = Key("tracked-keys")

// AddValues creates a new immutable context which includes the new keys and values
func AddValues(ctx context.Context, values ...zap.Field) context.Context {
	keys := copyMap(getKeys(ctx))
	for _, val := range values {
		key := Key(val.Key)
		keys[key] = dummy{}
		ctx = context.WithValue(ctx, key, val)
	}

	return context.WithValue(ctx, trackedKeys, keys)
}

// GetValues returns a map of all values stored in the current context
func GetValues(ctx context.Context) map[string]zap.Field {
	values := make(map[string]zap.Field)

	for k := range getKeys(ctx) {
		if v, ok := ctx.Value(k).(zap.Field); ok {
			values[string(k)] = v
		}
	}

	return values
}

// GetValuesSlice returns every value stored in the context ordered by key
func GetValuesSlice(ctx context.Context) []zap.Field {
	keys := getKeys(ctx)
	names := make([]string, 0, len(keys))
	for k := range keys {
		names = append(names, string(k))
	}
	sort.Strings(names)

	values := make([]zap.Field, 0, len(names))
	for _, name := range names {
		if v, ok := ctx.Value(Key(name)).(zap.Field); ok {
			values = append(values, v)
		}
	}

	return values
}

// Value returns the string form of a tracked field, or "" when absent
func Value(ctx context.Context, key string) string {
	field, ok := GetValues(ctx)[key]
	if !ok {
		return ""
	}

	if field.String != "" {
		return field.String
	}

	if s, ok := field.Interface.(interface{ String() string }); ok {
		return s.String()
	}

	return ""
}

// copyMap copies the tracked key set so derived contexts never share a map
func copyMap(from map[Key]dummy) map[Key]dummy {
	to := make(map[Key]dummy, len(from)+1)
	for k := range from {
		to[k] = dummy{}
	}

	return to
}

func getKeys(ctx context.Context) map[Key]dummy {
	if k, ok := ctx.Value(trackedKeys).(map[Key]dummy); ok {
		return k
	}

	return map[Key]dummy{}
}
