package flaglog

import (
	"fmt"
	"slices"
	"strings"
)

// Count is a value and the number of times it was seen
type Count struct {
	Value string `json:"value"`
	N     int    `json:"n"`
}

func (c Count) String() string {
	return fmt.Sprintf("%s[%d]", c.Value, c.N)
}

// Counter tallies string values, remembering the order they were first seen
// in so that ties rank in a stable way
type Counter struct {
	counts map[string]int
	order  []string
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int)}
}

// Add counts v once. Empty values are ignored.
func (c *Counter) Add(v string) {
	if v == "" {
		return
	}
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

// Get returns how many times v was counted
func (c *Counter) Get(v string) int {
	return c.counts[v]
}

// Len returns the number of distinct values
func (c *Counter) Len() int {
	return len(c.order)
}

// Total returns the number of values counted
func (c *Counter) Total() int {
	var total int
	for _, n := range c.counts {
		total += n
	}
	return total
}

// MostCommon returns the n most frequent values in descending order of
// count. A non-positive n returns all of them.
func (c *Counter) MostCommon(n int) []Count {
	ranked := make([]Count, len(c.order))
	for i, v := range c.order {
		ranked[i] = Count{Value: v, N: c.counts[v]}
	}

	slices.SortStableFunc(ranked, func(a, b Count) int {
		return b.N - a.N
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// FormatCounts renders counts as "DA41[12] DA42[7]"
func FormatCounts(counts []Count) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
