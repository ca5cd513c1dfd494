package dirsql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectInjected drains a lineInjector into a slice of output lines
func collectInjected(t *testing.T, base string, lines []numberedLine) []string {
	t.Helper()

	li := newLineInjector(strings.NewReader(base), newInjection(lines))
	var out []string
	for {
		line, ok, err := li.next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, line)
	}
}

func TestLineInjector(t *testing.T) {
	t.Parallel()

	t.Run("Overwrite and sparse append with padding", func(t *testing.T) {
		t.Parallel()

		base := strings.Join([]string{
			"the first line",
			"the second line",
			"the third line",
			"the fourth line",
			"the fifth line",
		}, "\n") + "\n"

		inject := []numberedLine{
			{num: 3, text: "NEW 3"},
			{num: 4, text: "NEW 4"},
			{num: 10, text: "NEW 10"},
		}

		expected := []string{
			"the first line",
			"the second line",
			"the third line",
			"NEW 3",
			"NEW 4",
			"",
			"",
			"",
			"",
			"",
			"NEW 10",
		}

		assert.Equal(t, expected, collectInjected(t, base, inject))
	})

	t.Run("No injection passes the base through", func(t *testing.T) {
		t.Parallel()

		out := collectInjected(t, "a\nb\nc\n", nil)
		assert.Equal(t, []string{"a", "b", "c"}, out)
	})

	t.Run("Empty base pads up to the target", func(t *testing.T) {
		t.Parallel()

		out := collectInjected(t, "", []numberedLine{{num: 2, text: "X"}})
		assert.Equal(t, []string{"", "", "X"}, out)
	})

	t.Run("In-place overwrite keeps all other lines", func(t *testing.T) {
		t.Parallel()

		out := collectInjected(t, "a\nb\nc\n", []numberedLine{{num: 1, text: "B"}})
		assert.Equal(t, []string{"a", "B", "c"}, out)
	})

	t.Run("Unsorted input is sorted by line number", func(t *testing.T) {
		t.Parallel()

		out := collectInjected(t, "a\nb\nc\n", []numberedLine{
			{num: 2, text: "C"},
			{num: 0, text: "A"},
		})
		assert.Equal(t, []string{"A", "b", "C"}, out)
	})

	t.Run("Same target line number keeps the later entry", func(t *testing.T) {
		t.Parallel()

		out := collectInjected(t, "a\nb\n", []numberedLine{
			{num: 1, text: "first"},
			{num: 1, text: "second"},
		})
		assert.Equal(t, []string{"a", "second"}, out)
	})
}

func TestInjection(t *testing.T) {
	t.Parallel()

	t.Run("Consumed front to back in sorted order", func(t *testing.T) {
		t.Parallel()

		inj := newInjection([]numberedLine{
			{num: 5, text: "five"},
			{num: 1, text: "one"},
			{num: 3, text: "three"},
		})

		num, ok := inj.nextNum()
		require.True(t, ok)
		assert.Equal(t, 1, num)
		assert.Equal(t, "one", inj.pop())

		num, ok = inj.nextNum()
		require.True(t, ok)
		assert.Equal(t, 3, num)
		assert.Equal(t, "three", inj.pop())
		assert.Equal(t, "five", inj.pop())

		_, ok = inj.nextNum()
		assert.False(t, ok)
	})
}
