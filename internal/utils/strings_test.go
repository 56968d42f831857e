package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty string", "", []string{}},
		{"only separators", " , ,", []string{}},
		{"single value", "refinery_outage", []string{"refinery_outage"}},
		{"varied spacing", "fuel_volatility_spike,  fuel_bollinger_breakout ", []string{"fuel_volatility_spike", "fuel_bollinger_breakout"}},
		{"trailing comma", "http://a.local,", []string{"http://a.local"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseList(tt.input)
			assert.NotNil(t, got)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestJoinList_RoundTrip(t *testing.T) {
	values := []string{"a", "b", "c"}
	assert.Equal(t, "a,b,c", JoinList(values))
	assert.Equal(t, values, ParseList(JoinList(values)))
	assert.Equal(t, "", JoinList(nil))
}
