package assert

import (
	"fmt"
	"reflect"
)

// NotNil panics if value is nil, this includes typed nils stored in an
// interface (ex. a nil *resty.Client passed as any).
func NotNil(value any, what ...string) {
	if value == nil {
		panic(message("value", "not nil", what))
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			panic(message("value", "not nil", what))
		}
	}
}

func NotEmptyStr(str string, what ...string) {
	if str == "" {
		panic(message("string", "non-empty", what))
	}
}

func message(kind, expected string, what []string) string {
	if len(what) == 0 {
		return fmt.Sprintf("expected %s to be %s", kind, expected)
	}
	return fmt.Sprintf("expected %s (%s) to be %s", kind, what[0], expected)
}
