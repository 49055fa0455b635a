package enabledby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/specgraph/errors"
)

func decode(t *testing.T, src string) any {
	t.Helper()
	var v any
	require.NoError(t, yaml.Unmarshal([]byte(src), &v))
	return v
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Expr
	}{
		{"literal true", "true", Literal(true)},
		{"literal false", "false", Literal(false)},
		{"symbol", "RTEMS_SMP", Symbol("RTEMS_SMP")},
		{"list is or", "[A, B]", Or{Symbol("A"), Symbol("B")}},
		{"empty list", "[]", Or{}},
		{"and", "{and: [A, B]}", And{Symbol("A"), Symbol("B")}},
		{"or", "{or: [A]}", Or{Symbol("A")}},
		{"not", "{not: A}", Not{X: Symbol("A")}},
		{
			"nested",
			"and:\n- A\n- not:\n    or: [B, C]\n- [D, true]\n",
			And{
				Symbol("A"),
				Not{X: Or{Symbol("B"), Symbol("C")}},
				Or{Symbol("D"), Literal(true)},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(decode(t, tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{"unknown operator", map[string]any{"xor": []any{"A"}}},
		{"two keys", map[string]any{"and": []any{"A"}, "or": []any{"B"}}},
		{"empty mapping", map[string]any{}},
		{"and without sequence", map[string]any{"and": "A"}},
		{"number", 42},
		{"null", nil},
		{"nested unknown operator", []any{"A", map[string]any{"nand": []any{}}}},
		{"non-string key", map[any]any{1: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrExpression), "got %v", err)
		})
	}
}

func TestParseAcceptsInterfaceKeyedMaps(t *testing.T) {
	got, err := Parse(map[any]any{"not": "A"})
	require.NoError(t, err)
	assert.Equal(t, Not{X: Symbol("A")}, got)
}

func TestSymbols(t *testing.T) {
	e := And{Symbol("B"), Or{Symbol("A"), Not{X: Symbol("B")}}, Literal(true)}
	assert.Equal(t, []string{"A", "B"}, Symbols(e))
	assert.Empty(t, Symbols(Literal(false)))
}
