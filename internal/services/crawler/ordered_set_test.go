package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedIDSet_InsertionOrderAndRank(t *testing.T) {
	s := NewOrderedIDSet()

	assert.True(t, s.Add("111"))
	assert.True(t, s.Add("222"))
	assert.False(t, s.Add("111"))
	assert.True(t, s.Add("8470784672"))
	assert.False(t, s.Add(""))

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"111", "222", "8470784672"}, s.IDs())
	assert.Equal(t, 3, s.Rank("8470784672"))
	assert.Equal(t, 2, s.IndexOf("8470784672"))
	assert.Equal(t, -1, s.IndexOf("999"))
	assert.Equal(t, 0, s.Rank("999"))
	assert.True(t, s.Contains("222"))
	assert.False(t, s.Contains("999"))
}

func TestOrderedIDSet_NoDuplicatesAcrossPages(t *testing.T) {
	pages := [][]string{
		{"A", "B", "C"},
		{"C", "B", "D"},
		{"A", "D", "E", "A"},
	}

	s := NewOrderedIDSet()
	added := make([]int, 0, len(pages))
	for _, page := range pages {
		added = append(added, s.AddAll(page))
	}

	assert.Equal(t, []int{3, 1, 1}, added)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, s.IDs())

	seen := make(map[string]bool)
	for _, id := range s.IDs() {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestOrderedIDSet_RankFrozenAfterFirstInsert(t *testing.T) {
	s := NewOrderedIDSet()
	s.AddAll([]string{"x", "target"})
	rank := s.Rank("target")

	s.AddAll([]string{"target", "y", "z", "target"})
	assert.Equal(t, rank, s.Rank("target"))
	assert.Equal(t, 2, rank)
}

func TestOrderedIDSet_IDsReturnsCopy(t *testing.T) {
	s := NewOrderedIDSet()
	s.Add("1")
	ids := s.IDs()
	ids[0] = "mutated"
	assert.Equal(t, []string{"1"}, s.IDs())
}
