/*
Package dramaflow is a conversational orchestrator that walks a user through promoting a
short drama: pick a title from the daily ranking, choose target platforms, get a promotion
script drafted and revised, then receive an editing plan.

Every message is classified into one of nine intents by a model-backed router. A fixed
transition table then picks the handler agent that answers and derives the next workflow
state. Sessions are independent; messages within one session are processed in order.

# Usage

	provider := openai.New(os.Getenv("OPENAI_API_KEY"))
	eng, err := dramaflow.New(provider)
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.Chat(ctx, "user-42", "给我看看今天的热门短剧")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.AgentName, res.Response)

# Adapters

  - pkg/adapters/http: REST, SSE and WebSocket transport.
  - pkg/adapters/mcp: Model Context Protocol tools.
  - pkg/adapters/openai, pkg/adapters/gemini: completion providers.
  - pkg/adapters/redis: cross-process session locks.
*/
package dramaflow
