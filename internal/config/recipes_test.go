package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniqueRecipes(t *testing.T) {
	assert.Equal(t, []string{"frontend", "backend"}, UniqueRecipes(sampleConfig().Run))
	assert.Empty(t, UniqueRecipes(RunOptions{}))
}

func TestCommandsByRecipes(t *testing.T) {
	o := sampleConfig().Run

	tests := []struct {
		name    string
		recipes []string
		want    []string
	}{
		{"single", []string{"backend"}, []string{"go run ./api", "redis-server"}},
		{"overlapping", []string{"frontend", "backend"}, []string{"npm run dev", "go run ./api", "redis-server"}},
		{"unknown", []string{"docs"}, nil},
		{"none", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommandsByRecipes(o, tt.recipes))
		})
	}
}
