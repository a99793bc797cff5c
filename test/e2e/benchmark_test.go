package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonviewer/internal/generator"
	"github.com/mcncl/jsonviewer/internal/parser"
	"github.com/mcncl/jsonviewer/internal/viewer"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(rng *rand.Rand, depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"count":      rng.Intn(100),
			"enabled":    rng.Intn(2) == 1,
			"link":       "https://example.com/leaf",
		}
	}

	result := make(map[string]interface{})
	for i := 0; i < width; i++ {
		result[fmt.Sprintf("nested_%d_%d", depth, i)] = generateNestedJSON(rng, depth-1, width)
	}
	return result
}

// generateLargeJSON creates an array of flat records
func generateLargeJSON(rng *rand.Rand, itemCount int) []map[string]interface{} {
	items := make([]map[string]interface{}, itemCount)
	for i := range items {
		items[i] = map[string]interface{}{
			"id":          i + 1,
			"name":        fmt.Sprintf("Item %d", i+1),
			"description": fmt.Sprintf("This is item number %d in the test dataset, long enough to be truncated", i+1),
			"price":       rng.Float64() * 1000,
			"active":      rng.Intn(2) == 1,
			"tags":        []string{"tag1", "tag2", "tag3"}[0 : rng.Intn(3)+1],
		}
	}
	return items
}

func parsed(b *testing.B, v any) any {
	b.Helper()
	data, err := json.Marshal(v)
	require.NoError(b, err)
	ir, err := parser.ParseString(string(data))
	require.NoError(b, err)
	return ir.Root
}

// BenchmarkRender measures markup generation alone
func BenchmarkRender(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	cases := []struct {
		name  string
		value any
	}{
		{"Depth3Width3", generateNestedJSON(rng, 3, 3)},
		{"Depth5Width2", generateNestedJSON(rng, 5, 2)},
		{"1000Items", generateLargeJSON(rng, 1000)},
	}

	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			value := parsed(b, c.value)
			opts := viewer.DefaultOptions()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = viewer.Render(value, opts)
			}
		})
	}
}

// BenchmarkMountCollapsed measures rendering, binding and the collapse pass
func BenchmarkMountCollapsed(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	value := parsed(b, generateLargeJSON(rng, 1000))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s, err := viewer.NewDocumentSurface("bench")
		require.NoError(b, err)
		require.NoError(b, s.Mount(value, viewer.Collapsed(true)))
	}
}

// BenchmarkPage measures a full page build
func BenchmarkPage(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	value := parsed(b, generateLargeJSON(rng, 100))
	g := generator.NewGenerator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := g.Page(value)
		require.NoError(b, err)
	}
}
