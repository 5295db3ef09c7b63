package decompose

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecomposeSingletonWhenNoCoordinator(t *testing.T) {
	got := Decompose("What is the weather in Seoul?")
	require.Len(t, got, 1)
}

func TestDecomposeSplitsWeatherEntities(t *testing.T) {
	got := Decompose("weather in Seoul and Tokyo")
	require.GreaterOrEqual(t, len(got), 2)
	for _, e := range got {
		require.Contains(t, e, "weather")
	}
}

func TestDecomposeAppendsCompareMarker(t *testing.T) {
	got := Decompose("compare weather in Seoul and Tokyo")
	require.Equal(t, "compare", got[len(got)-1])
}

func TestDecomposeCalculationPreservesNumerics(t *testing.T) {
	got := Decompose("calculate 12 + 7 and 3 * 4")
	require.GreaterOrEqual(t, len(got), 2)
	joined := got[0] + got[1]
	require.Contains(t, joined, "12")
}

func TestDecomposeDoesNotSplitDivisionExpressions(t *testing.T) {
	require.Len(t, Decompose("calculate 10/2"), 1)
	require.Len(t, Decompose("calculate 10 / 2"), 1)
}

func TestDecomposeNeverEmpty(t *testing.T) {
	got := Decompose("")
	require.Len(t, got, 1)
}

func TestDecomposeMinimumLengthInvariant(t *testing.T) {
	inputs := []string{
		"hello there", "weather in Seoul, Tokyo, and Busan", "what is the time",
	}
	for _, in := range inputs {
		got := Decompose(in)
		require.GreaterOrEqual(t, len(got), 1, "input=%q", in)
	}
}
