package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotNil(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int

	require.Panics(t, func() { NotNil(nil) })
	require.Panics(t, func() { NotNil(nilPtr) })
	require.Panics(t, func() { NotNil(nilMap, "settings") })
	require.NotPanics(t, func() { NotNil(1) })
	require.NotPanics(t, func() { NotNil(&struct{}{}) })
}

func TestNotEmptyStr(t *testing.T) {
	require.PanicsWithValue(t, "expected string (game id) to be non-empty", func() {
		NotEmptyStr("", "game id")
	})
	require.NotPanics(t, func() { NotEmptyStr("x") })
}
