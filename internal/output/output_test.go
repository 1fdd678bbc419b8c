package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessages(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Success("corpus loaded")
	w.Warningf("semantic channel %s", "degraded")
	w.Error("corpus not found")
	w.Status("", "indented line")
	w.Detail("patterns", "42")

	out := buf.String()
	assert.Contains(t, out, "✅ corpus loaded")
	assert.Contains(t, out, "semantic channel degraded")
	assert.Contains(t, out, "❌ corpus not found")
	assert.Contains(t, out, "   indented line")
	assert.Contains(t, out, "   patterns: 42")
}

func TestCodeBlockIndentsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Code("line one\nline two")

	assert.Contains(t, buf.String(), "  line one\n  line two\n")
}
