package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestEqualScalars(t *testing.T) {
	assert.True(t, String.Equal(String))
	assert.False(t, String.Equal(Int))
	assert.True(t, None.Equal(None))
}

func TestEqualLists(t *testing.T) {
	a := List(Int)
	b := List(Int)
	c := List(String)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(Int))
}

func TestEqualFunctions(t *testing.T) {
	f1 := Function([]Type{Int, String}, Bool)
	f2 := Function([]Type{Int, String}, Bool)
	f3 := Function([]Type{Int}, Bool)

	if diff := cmp.Diff(f1.String(), f2.String()); diff != "" {
		t.Fatalf("function signature string mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, f1.Equal(f2))
	assert.False(t, f1.Equal(f3))
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name string
		want Type
		ok   bool
	}{
		{"string", String, true},
		{"int", Int, true},
		{"float", Float, true},
		{"bool", Bool, true},
		{"regex", Regex, true},
		{"none", None, true},
		{"nope", Type{}, false},
	}
	for _, tt := range tests {
		got, ok := FromName(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		if ok {
			assert.True(t, got.Equal(tt.want), "FromName(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestFromNameBracketedListTypes(t *testing.T) {
	got, ok := FromName("[int]")
	assert.True(t, ok)
	assert.True(t, got.Equal(List(Int)))

	got, ok = FromName("[[string]]")
	assert.True(t, ok)
	assert.True(t, got.Equal(List(List(String))))

	_, ok = FromName("[nope]")
	assert.False(t, ok)

	_, ok = FromName("[int")
	assert.False(t, ok)
}

func TestStringRendering(t *testing.T) {
	assert.Equal(t, "list<int>", List(Int).String())
	assert.Equal(t, "fn(int, string) : bool", Function([]Type{Int, String}, Bool).String())
}
