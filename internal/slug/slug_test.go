package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"One Piece", "one-piece"},
		{"One Piece: New World!", "one-piece-new-world"},
		{"  Berserk  ", "berserk"},
		{"A --- B", "a-b"},
		{"2024 Top 10", "2024-top-10"},
		{"", "untitled"},
		{"!!!", "untitled"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Generate(c.in), "input %q", c.in)
	}
}

func TestGenerateNeverEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "???", "---"} {
		assert.NotEmpty(t, Generate(in))
	}
}

func TestForChapter(t *testing.T) {
	assert.Equal(t, "one-piece-chapter-12", ForChapter("one-piece", "12"))
	assert.Equal(t, "one-piece-chapter-10-5", ForChapter("one-piece", "10.5"))
}
