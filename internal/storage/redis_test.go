package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	t.Parallel()

	a := Key([]byte(`[{"site_url":"https://a.example.com"}]`))
	b := Key([]byte(`[{"site_url":"https://b.example.com"}]`))

	assert.Len(t, a, len("parse:")+64)
	assert.True(t, strings.HasPrefix(a, "parse:"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, Key([]byte(`[{"site_url":"https://a.example.com"}]`)))
}
