package extract

import (
	"testing"

	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_Preamble(t *testing.T) {
	raw := "Sure! {\"intent\":\"select_drama\",\"confidence\":0.9,\"entities\":{},\"reasoning\":\"ok\"} Thanks!"

	obj, err := Object(raw)
	require.NoError(t, err)
	assert.Equal(t, "select_drama", obj["intent"])
	assert.Equal(t, 0.9, obj["confidence"])
	assert.Equal(t, map[string]any{}, obj["entities"])
}

func TestObject_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"No Braces", "no json here"},
		{"Only Opening", "{ not closed"},
		{"Reversed", "} before {"},
		{"Broken Body", "{intent: select_drama}"},
		{"Unrelated Trailing Brace", `{"intent":"query_ranking"} and {oops}`},
		{"Array Payload", `{[1,2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := Object(tt.raw)
			assert.Nil(t, obj)
			assert.ErrorIs(t, err, domain.ErrParseFailure)
		})
	}
}

func TestObject_NestedAndMultiline(t *testing.T) {
	raw := "```json\n{\n  \"intent\": \"select_platform\",\n  \"entities\": {\"platforms\": [\"TikTok\", \"Instagram\"]}\n}\n```"

	obj, err := Object(raw)
	require.NoError(t, err)
	entities, ok := obj["entities"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"TikTok", "Instagram"}, entities["platforms"])
}

func TestSpan(t *testing.T) {
	span, ok := Span("a {x} b {y} c")
	assert.True(t, ok)
	assert.Equal(t, "{x} b {y}", span)

	assert.False(t, HasSpan("plain text"))
	assert.True(t, HasSpan("{}"))
}
