/*
Package domain contains the core domain models of the dramaflow orchestrator.

It defines the closed vocabularies of the promotion workflow (Steps, Intents and
Handler IDs) and the per-session records that the dispatcher reads and writes. This
package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - WorkflowState: progress of one session (selected drama, platforms, script marker, step).
  - IntentResult: typed classifier output (intent, confidence, entities, reasoning).
  - Session: a WorkflowState plus its ConversationTurn history.
  - WorkflowDiff: partial updates streamed to clients after each turn.
  - LifecycleHooks: observability callbacks fired by the dispatcher.
*/
package domain
