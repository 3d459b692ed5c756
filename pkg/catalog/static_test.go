package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	items, err := c.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 7)

	first := items[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "霸道总裁的替身新娘", first.Title)
	assert.Equal(t, "8500万", first.Views)
	assert.Equal(t, 95, first.Score)
	assert.Equal(t, []string{"霸总", "甜宠", "替嫁"}, first.Tags)
	assert.Equal(t, "/handsome-ceo-in-suit-office-background.jpg", first.Image)
	assert.Equal(t, "宫廷秘史之皇后传", items[6].Title)
}

func TestListItems_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	items, _ := c.ListItems(context.Background())
	items[0].Title = "changed"

	again, _ := c.ListItems(context.Background())
	assert.Equal(t, "霸道总裁的替身新娘", again[0].Title)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	doc := "dramas:\n  - id: 9\n    title: Test Drama\n    views: 1万\n    score: 50\n    tags: [a]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	items, _ := c.ListItems(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "Test Drama", items[0].Title)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("dramas: {"))
	assert.Error(t, err)
}
