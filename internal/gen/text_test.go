package gen

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText_PrefixLines(t *testing.T) {
	assert.Equal(t, "> a\n> b\n", PrefixLines("a\nb\n", "> "))
	assert.Equal(t, "> a\n> b", PrefixLines("a\nb", "> "))
	assert.Equal(t, "  ", PrefixLines("", "  "))
}

func TestText_Quote(t *testing.T) {
	assert.Equal(t, `'hello'`, Quote("hello"))
	assert.Equal(t, `'it\'s \$5\\'`, Quote(`it's $5\`))
	assert.Equal(t, "'a\\\nb'", Quote("a\nb"))
}

func TestText_MultilineQuote(t *testing.T) {
	assert.Equal(t, "'one'", MultilineQuote("one"))
	assert.Equal(t, "'a' + '\\n' + \n'b'", MultilineQuote("a\nb"))
}

func TestText_IsNumber(t *testing.T) {
	for _, s := range []string{"0", "42", "-3.5", " 7 "} {
		assert.True(t, IsNumber(s), s)
	}
	for _, s := range []string{"", "3.", "1e3", "x", "1 + 2"} {
		assert.False(t, IsNumber(s), s)
	}
}

func TestText_ParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{" 42 ", 42},
		{"0x1F", 31},
		{"0b101", 5},
		{"1e3", 1000},
		{"-2.5", -2.5},
		{"Infinity", math.Inf(1)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.in), tt.in)
	}
	assert.True(t, math.IsNaN(ParseNumber("abc")))
	assert.True(t, math.IsNaN(ParseNumber("0xZZ")))
}

func TestText_FormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{100, "100"},
		{3.5, "3.5"},
		{-0.25, "-0.25"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1e21, "1e+21"},
		{123456789012, "123456789012"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestText_IndentPairs(t *testing.T) {
	assert.Equal(t, "a\n\tb\n\t\t c\n d", indentPairs("a\n  b\n     c\n d", "\t"))
}

func TestOrder_WrapIfNeeded(t *testing.T) {
	assert.Equal(t, "(a + b)", WrapIfNeeded("a + b", OrderAdditive, OrderMultiplicative))
	assert.Equal(t, "a * b", WrapIfNeeded("a * b", OrderMultiplicative, OrderAdditive))
	assert.Equal(t, "a + b", WrapIfNeeded("a + b", OrderAdditive, OrderAdditive))
	assert.Equal(t, "a + b", WrapIfNeeded("a + b", OrderAdditive, OrderNone))
}

func TestOrder_Tighter(t *testing.T) {
	assert.Equal(t, OrderMultiplicative, OrderAdditive.Tighter())
	assert.Equal(t, OrderAtomic, OrderAtomic.Tighter())
	assert.Equal(t, "(a - b)", WrapIfNeeded("a - b", OrderAdditive, OrderAdditive.Tighter()))
}

func TestOrder_String(t *testing.T) {
	assert.Equal(t, "additive", OrderAdditive.String())
	assert.Equal(t, "order(42)", Order(42).String())
}
