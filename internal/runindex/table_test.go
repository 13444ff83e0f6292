package runindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventTableFind(t *testing.T) {
	tab := NewTable([]Span[uint64]{
		{Run: 2, Start: 200, Stop: 305},
		{Run: 1, Start: 100, Stop: 199},
		{Run: 4, Start: 400, Stop: 450},
	}, true)

	tests := []struct {
		name string
		ev   uint64
		run  int
		miss Miss
	}{
		{"inside first", 150, 1, Hit},
		{"first start", 100, 1, Hit},
		{"first stop inclusive", 199, 1, Hit},
		{"second start", 200, 2, Hit},
		{"second stop", 305, 2, Hit},
		{"before first", 50, -1, BeforeFirst},
		{"gap", 350, -1, InGap},
		{"after last", 9999, -1, AfterLast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run, miss := tab.Find(tt.ev)
			assert.Equal(t, tt.run, run)
			assert.Equal(t, tt.miss, miss)
		})
	}
}

func TestTimeTableStopExclusive(t *testing.T) {
	tab := NewTable([]Span[float64]{
		{Run: 10, Start: 1000, Stop: 2000},
		{Run: 11, Start: 2000, Stop: 2500},
		{Run: 12, Start: 3000, Stop: 3100},
	}, false)

	run, _ := tab.Find(1999.999)
	assert.Equal(t, 10, run)
	run, _ = tab.Find(2000)
	assert.Equal(t, 11, run, "a shared boundary belongs to the later run")
	run, miss := tab.Find(2500)
	assert.Equal(t, -1, run)
	assert.Equal(t, InGap, miss)
	_, miss = tab.Find(3100)
	assert.Equal(t, AfterLast, miss)
	_, miss = tab.Find(999)
	assert.Equal(t, BeforeFirst, miss)
}

func TestEmptyTable(t *testing.T) {
	run, miss := NewTable[uint64](nil, true).Find(1)
	assert.Equal(t, -1, run)
	assert.Equal(t, Empty, miss)
	assert.Equal(t, "empty", miss.String())
}
