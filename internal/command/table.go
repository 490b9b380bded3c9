// internal/command/table.go
package command

import "epos-bridge/pkg/driver"

// Table maps a symbolic record token to a protocol constant
type Table[T any] struct {
	entries     map[string]T
	fallback    T
	hasFallback bool
}

// NewTable builds a table without a fallback; unknown tokens are unmapped
func NewTable[T any](entries map[string]T) Table[T] {
	return Table[T]{entries: entries}
}

// NewTableWithFallback builds a total table
func NewTableWithFallback[T any](entries map[string]T, fallback T) Table[T] {
	return Table[T]{entries: entries, fallback: fallback, hasFallback: true}
}

// Lookup returns the constant for token. Unknown tokens resolve to the
// fallback when the table has one.
func (t Table[T]) Lookup(token string) (T, bool) {
	if v, ok := t.entries[token]; ok {
		return v, true
	}
	if t.hasFallback {
		return t.fallback, true
	}
	var zero T
	return zero, false
}

// Map resolves token on a total table. Tables without a fallback yield
// the zero value for unknown tokens; use Lookup for those.
func (t Table[T]) Map(token string) T {
	v, _ := t.Lookup(token)
	return v
}

// CutTable maps cut tokens. EPOS2_CUT_FEED resolving to the no-feed cut is
// the established behaviour of existing clients and is kept as is.
var CutTable = NewTableWithFallback(map[string]driver.CutMode{
	"CUT_FEED":       driver.CutFeed,
	"EPOS2_CUT_FEED": driver.CutNoFeed,
	"CUT_RESERVE":    driver.CutReserve,
}, driver.CutDefault)

var AlignTable = NewTableWithFallback(map[string]driver.Align{
	"LEFT":   driver.AlignLeft,
	"CENTER": driver.AlignCenter,
	"RIGHT":  driver.AlignRight,
}, driver.AlignDefault)

var FontTable = NewTable(map[string]driver.Font{
	"FONT_A": driver.FontA,
	"FONT_B": driver.FontB,
	"FONT_C": driver.FontC,
	"FONT_D": driver.FontD,
	"FONT_E": driver.FontE,
})

var ColorTable = NewTableWithFallback(map[string]driver.Color{
	"COLOR_NONE": driver.ColorNone,
	"COLOR_1":    driver.Color1,
	"COLOR_2":    driver.Color2,
	"COLOR_3":    driver.Color3,
	"COLOR_4":    driver.Color4,
}, driver.ColorDefault)
