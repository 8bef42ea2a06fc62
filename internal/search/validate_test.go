package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQueryAcceptsAllowedCharacters(t *testing.T) {
	for _, input := range []string{
		"alice",
		"alice_b",
		"user 123",
		"UPPER lower 42",
		"",
	} {
		q, ok := ValidateQuery(input)
		assert.True(t, ok, "expected %q to validate", input)
		assert.Equal(t, strings.TrimSpace(input), q)
	}
}

func TestValidateQueryRejectsSpecialCharacters(t *testing.T) {
	for _, input := range []string{
		"alice'; DROP TABLE users--",
		"a%b",
		"<script>",
		"émile",
		"semi;colon",
		"tab\there",
	} {
		_, ok := ValidateQuery(input)
		assert.False(t, ok, "expected %q to be rejected", input)
	}
}

func TestValidateQueryRejectsOverlongInput(t *testing.T) {
	q, ok := ValidateQuery(strings.Repeat("a", MaxQueryLength))
	assert.True(t, ok)
	assert.Len(t, q, MaxQueryLength)

	_, ok = ValidateQuery(strings.Repeat("a", MaxQueryLength+1))
	assert.False(t, ok)
}

func TestValidateQueryTrimsWhitespace(t *testing.T) {
	q, ok := ValidateQuery("  alice  ")
	assert.True(t, ok)
	assert.Equal(t, "alice", q)
}
