package service

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
)

// StripNilFields removes every nil-valued field from an update document,
// recursing into nested documents and arrays. The store rejects nil field
// values, and a nil in a $set would clobber data anyway. The operation is
// idempotent: stripping a stripped document changes nothing.
func StripNilFields(doc bson.M) bson.M {
	out := bson.M{}
	for key, value := range doc {
		if isNil(value) {
			continue
		}
		out[key] = stripValue(value)
	}
	return out
}

func stripValue(value any) any {
	switch v := value.(type) {
	case bson.M:
		return StripNilFields(v)
	case map[string]any:
		return StripNilFields(bson.M(v))
	case bson.A:
		return stripArray(v)
	case []any:
		return stripArray(v)
	default:
		return value
	}
}

func stripArray(in []any) bson.A {
	out := make(bson.A, 0, len(in))
	for _, elem := range in {
		if isNil(elem) {
			continue
		}
		out = append(out, stripValue(elem))
	}
	return out
}

// isNil also catches typed nils (e.g. a nil *float64 stored in an any),
// which compare non-nil against the untyped nil literal.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}
