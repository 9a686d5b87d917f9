package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	out := string(r.Render("# Title\n\nSome **bold** text"))
	assert.Contains(t, out, "<h1")
	assert.Contains(t, out, "<strong>bold</strong>")

	out = string(r.Render("hi <script>alert(1)</script> <a href=\"javascript:alert(1)\">x</a>"))
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\`, escapeLike(`50% off_now \`))
	assert.False(t, strings.Contains(escapeLike("plain"), `\`))
}
