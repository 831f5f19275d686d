package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValveInt(t *testing.T) {
	ptr := func(v float64) *float64 { return &v }

	tests := []struct {
		name     string
		valve    *float64
		want     int
		integral bool
	}{
		{"no valve column", nil, 0, false},
		{"integer position", ptr(3), 3, true},
		{"zero position", ptr(0), 0, true},
		{"mid-switch", ptr(1.5), 0, false},
		{"unparseable", ptr(math.NaN()), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Reading{Valve: tt.valve}
			v, integral := r.ValveInt()
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.integral, integral)
		})
	}
}

func TestGroupKeys(t *testing.T) {
	r := Reading{Treatment: "warmed", Replicate: "p3"}
	assert.True(t, r.HasGroup())
	assert.Equal(t, "warmed/p3", r.Key().String())

	assert.False(t, Reading{Treatment: "warmed"}.HasGroup())
	assert.False(t, Reading{Replicate: "p3"}.HasGroup())

	k := FluxGroupKey{Treatment: "warmed", Replicate: "p3", Valve: 2}
	assert.Equal(t, "warmed/p3@2", k.String())
}
