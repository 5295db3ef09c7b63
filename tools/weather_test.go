package tools

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanLocationStripsWeatherNoise(t *testing.T) {
	require.Equal(t, "Seoul", cleanLocation("Seoul weather?"))
}

func TestCleanLocationExtractsInClause(t *testing.T) {
	require.Equal(t, "Tokyo", cleanLocation("what's the weather in Tokyo"))
}

func TestCleanLocationMapsKoreanCityName(t *testing.T) {
	require.Equal(t, "Seoul", cleanLocation("서울 날씨"))
}

func TestCleanLocationFallsBackToLastWord(t *testing.T) {
	require.Equal(t, "springfield", cleanLocation("forecast for little springfield"))
}

func TestCleanLocationCanonicalizesBareKnownCity(t *testing.T) {
	require.Equal(t, "Paris", cleanLocation("paris"))
}
