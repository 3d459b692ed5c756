package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/dramaflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChat(t *testing.T) {
	eng, err := dramaflow.New(scripted())
	require.NoError(t, err)

	in := strings.NewReader(strings.Join([]string{
		"/reset",
		"今天有什么热门短剧",
		"",
		"我想推广霸道总裁的替身新娘",
		"/state",
		"/graph",
		"/agents",
		"/bogus",
		"/reset",
		"q",
		"never read",
	}, "\n"))
	var out bytes.Buffer

	require.NoError(t, RunChat(context.Background(), eng, in, &out, ChatOptions{SessionID: "repl", Banner: true, Version: "9.9.9"}))
	got := out.String()

	assert.Contains(t, got, "v9.9.9")
	assert.Contains(t, got, ">>> Session 'repl' active.")
	assert.Contains(t, got, ">>> Session 'repl' not found, nothing to reset.")
	assert.Contains(t, got, "[短剧榜单助手]")
	assert.Contains(t, got, "1. 《霸道总裁的替身新娘》")
	assert.Contains(t, got, "[平台推广顾问]")
	assert.Contains(t, got, `"current_step": "drama_selected"`)
	assert.Contains(t, got, "class drama_selected current;")
	assert.Contains(t, got, "(general_agent)")
	assert.Contains(t, got, "Unknown command /bogus")
	assert.Contains(t, got, ">>> Session 'repl' reset.")
	assert.Contains(t, got, ">>> Bye!")
	assert.NotContains(t, got, "never read")

	state, err := eng.Workflow(context.Background(), "repl")
	require.NoError(t, err)
	assert.False(t, state.InWorkflow)
}

func TestRunChat_EOFAndCancel(t *testing.T) {
	eng, err := dramaflow.New(scripted())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, RunChat(context.Background(), eng, strings.NewReader("你好"), &out, ChatOptions{}))
	assert.Contains(t, out.String(), "Session 'default' active.")
	assert.Contains(t, out.String(), "**reply** 你好", "plain rendering keeps markdown")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out.Reset()
	require.NoError(t, RunChat(ctx, eng, strings.NewReader("你好\n"), &out, ChatOptions{}))
	assert.NotContains(t, out.String(), "reply")
}

func TestRunChat_RenderHook(t *testing.T) {
	eng, err := dramaflow.New(scripted())
	require.NoError(t, err)

	var out bytes.Buffer
	render := func(md string) string { return "<<" + md + ">>\n" }
	require.NoError(t, RunChat(context.Background(), eng, strings.NewReader("你好\n"), &out, ChatOptions{Render: render}))
	assert.Contains(t, out.String(), "<<**reply** 你好>>")
}
