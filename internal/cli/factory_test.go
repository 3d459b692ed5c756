package cli

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dramaflow/internal/config"
	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/internal/testutils"
	"github.com/aretw0/dramaflow/pkg/adapters/openai"
	"github.com/aretw0/dramaflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerPrefix = "你是一个智能意图识别系统"

func scripted() *testutils.ScriptedProvider {
	return &testutils.ScriptedProvider{Fn: func(_ context.Context, req ports.CompletionRequest) (string, error) {
		if strings.HasPrefix(req.Instruction, routerPrefix) {
			switch req.Message {
			case "今天有什么热门短剧":
				return `{"intent":"query_ranking","confidence":0.95,"entities":{},"reasoning":"r"}`, nil
			case "我想推广霸道总裁的替身新娘":
				return `{"intent":"select_drama","confidence":0.9,"entities":{"drama_name":"霸道总裁的替身新娘"},"reasoning":"r"}`, nil
			}
			return `{"intent":"general_question","confidence":0.6,"entities":{},"reasoning":"r"}`, nil
		}
		return "**reply** " + req.Message, nil
	}}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("Missing key", func(t *testing.T) {
		_, err := NewProvider(ctx, config.Default(), logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("OpenAI", func(t *testing.T) {
		cfg := config.Default()
		cfg.APIKey = "sk-test"
		p, err := NewProvider(ctx, cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &openai.Client{}, p)
	})

	t.Run("Throttled", func(t *testing.T) {
		cfg := config.Default()
		cfg.APIKey = "sk-test"
		cfg.RateLimit = 2
		p, err := NewProvider(ctx, cfg, logger)
		require.NoError(t, err)
		_, isClient := p.(*openai.Client)
		assert.False(t, isClient)
	})

	t.Run("Gemini", func(t *testing.T) {
		cfg := config.Default()
		cfg.Provider = config.ProviderGemini
		cfg.APIKey = "g-test"
		p, err := NewProvider(ctx, cfg, logger)
		require.NoError(t, err)
		assert.NotNil(t, p)
	})
}

func TestBuild(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.RedisURL = "redis://" + mr.Addr()

	var logs bytes.Buffer
	rt, err := Build(context.Background(), cfg, logging.NewWriter(&logs, slog.LevelInfo, "text"), scripted())
	require.NoError(t, err)
	defer rt.Close()
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "Session store is per-process")

	res, err := rt.Engine.Chat(context.Background(), "s1", "我想推广霸道总裁的替身新娘")
	require.NoError(t, err)
	assert.Equal(t, "平台推广顾问", res.AgentName)

	require.NotNil(t, rt.Metrics)
	w := httptest.NewRecorder()
	rt.Metrics.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `dramaflow_intents_total{fallback="false",intent="select_drama"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestBuild_Files(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(`dramas:
  - id: 1
    title: 测试短剧
    views: 1万
    score: 80
    description: d
    tags: [甜宠]
    image: x.jpg
`), 0o600))

	cfg := config.Default()
	cfg.Metrics = false
	cfg.CatalogPath = catalogPath

	rt, err := Build(context.Background(), cfg, logging.NewNop(), scripted())
	require.NoError(t, err)
	assert.Nil(t, rt.Metrics)

	items, err := rt.Engine.Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "测试短剧", items[0].Title)

	cfg.PersonasPath = filepath.Join(dir, "missing.yaml")
	_, err = Build(context.Background(), cfg, logging.NewNop(), scripted())
	assert.Error(t, err)
}

func TestBuild_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.RedisURL = "redis://" + mr.Addr()
	mr.Close()

	_, err := Build(context.Background(), cfg, logging.NewNop(), scripted())
	assert.Error(t, err)
}
