package aqi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRanges(t *testing.T) {
	cases := []struct {
		lo, hi int
		want   Tier
	}{
		{0, 50, Good},
		{50, 100, OK},
		{100, 200, Bad},
		{200, 1000, Dangerous},
	}
	for _, c := range cases {
		for a := c.lo; a < c.hi; a++ {
			got := Classify(a)
			if got != c.want {
				t.Fatalf("Classify(%d) = %q, want %q", a, got.Name, c.want.Name)
			}
		}
	}
}

func TestClassifyBoundariesGoUp(t *testing.T) {
	assert.Equal(t, Good, Classify(49))
	assert.Equal(t, OK, Classify(50))
	assert.Equal(t, OK, Classify(99))
	assert.Equal(t, Bad, Classify(100))
	assert.Equal(t, Bad, Classify(199))
	assert.Equal(t, Dangerous, Classify(200))
	assert.Equal(t, Dangerous, Classify(1<<30))
}

func TestClassifyLabels(t *testing.T) {
	assert.Equal(t, "Breathe easy", Classify(10).Label)
	assert.Equal(t, "Mostly fine", Classify(60).Label)
	assert.Equal(t, "Unhealthy air", Classify(150).Label)
	assert.Equal(t, "Stay inside!", Classify(300).Label)
	assert.Equal(t, "good", Classify(-3).Name)
}

func TestTiersOrdered(t *testing.T) {
	names := []string{}
	for _, tier := range Tiers() {
		names = append(names, tier.Name)
	}
	assert.Equal(t, []string{"good", "ok", "bad", "dangerous"}, names)
}
