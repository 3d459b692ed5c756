package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "2.0.0")
	out := buf.String()
	assert.Contains(t, out, "v2.0.0")
	assert.Contains(t, out, `\__,_|`)
}

func TestRenderers(t *testing.T) {
	assert.Equal(t, "hello\n", Plain("hello\n\n"))

	out := NewRenderer(40)("# 推荐脚本\n\n- 开场 3 秒")
	assert.Contains(t, out, "推荐脚本")
	assert.Contains(t, out, "开场 3 秒")
}
