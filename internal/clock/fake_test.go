package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock(t *testing.T) {
	loc := time.FixedZone("AST", -4*60*60)
	start := time.Date(2026, 3, 10, 9, 30, 0, 0, loc)

	c := NewFakeClock(start)
	assert.Equal(t, time.UTC, c.Now().Location())
	assert.True(t, c.Now().Equal(start))

	c.Advance(90 * time.Minute)
	assert.True(t, c.Now().Equal(start.Add(90*time.Minute)))

	c.Set(start)
	assert.True(t, c.Now().Equal(start))
}
