package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct_TrimsAndEscapes(t *testing.T) {
	req := &RegisterRequest{
		Username: "  alice  ",
		Password: "p<script>x</script>",
	}

	SanitizeStruct(req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "p&lt;script&gt;x&lt;/script&gt;", req.Password)
}

func TestSanitizeStruct_PointerFields(t *testing.T) {
	type payload struct {
		Note *string
	}
	note := "  hi there  "
	p := &payload{Note: &note}

	SanitizeStruct(p)

	assert.Equal(t, "hi there", *p.Note)
}

func TestSanitizeStruct_NilPointerIsSafe(t *testing.T) {
	type payload struct {
		Note *string
	}
	p := &payload{}

	SanitizeStruct(p)

	assert.Nil(t, p.Note)
}

func TestSanitizeStruct_NonStructIsNoOp(t *testing.T) {
	s := "unchanged"
	SanitizeStruct(s)
	SanitizeStruct(&s)
	assert.Equal(t, "unchanged", s)
}

func TestValidateSafeID(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"alice", true},
		{"alice_01", true},
		{"a.b-c", true},
		{"alice bob", false},
		{"<script>", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.valid, safeStringRe.MatchString(tt.input))
		})
	}
}
