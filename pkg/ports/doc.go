/*
Package ports defines the driven ports (interfaces) of the dramaflow engine.

These interfaces decouple the dispatcher from external implementations, allowing
the engine to work with different completion services, catalogs and session backends.

# Key Interfaces

  - CompletionProvider: the text-generation service behind the classifier and every handler.
  - Catalog: the ranking catalog returned with query_ranking answers.
  - SessionStore: keeps sessions between messages.
  - DistributedLocker: serializes one session's messages across replicas.
*/
package ports
