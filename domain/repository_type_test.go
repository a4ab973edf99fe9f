package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepositoryType(t *testing.T) {
	tests := []struct {
		in   string
		want RepositoryType
	}{
		{"remote", Remote},
		{"REST", Remote},
		{"local", Local},
		{"LOCAL", Local},
		{"localStorage", Local},
		{"local-storage", Local},
		{" persistent ", Local},
		{"memory", Memory},
		{"In-Memory", Memory},
		{"mock", Memory},
		{"sql", Database},
		{"database", Database},
		{"customBackend", RepositoryType("custom_backend")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRepositoryType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRepositoryType_Empty(t *testing.T) {
	_, err := ParseRepositoryType("  ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseDomain(t *testing.T) {
	d, err := ParseDomain(" Posts ")
	require.NoError(t, err)
	assert.Equal(t, Posts, d)

	_, err = ParseDomain("comments")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRepositoryTypeLabel(t *testing.T) {
	assert.Equal(t, "Remote API", Remote.Label())
	assert.Equal(t, "Local Storage", Local.Label())
	assert.Equal(t, "In-Memory", Memory.Label())
	assert.Equal(t, "Database", Database.Label())
	assert.Equal(t, "custom", RepositoryType("custom").Label())
}

func TestToSnake(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"already_snake": "already_snake",
		"camelCase":     "camel_case",
		"HTTPServer":    "http_server",
		"kebab-case":    "kebab_case",
		"--trim--":      "trim",
		"v2Remote":      "v2_remote",
	}
	for in, want := range cases {
		assert.Equal(t, want, toSnake(in), in)
	}
}
