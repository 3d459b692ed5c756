/*
Package session serializes access to conversation sessions.

A Manager wraps a ports.SessionStore with a per-session mutex (reference counted, so idle
sessions hold no lock) and, optionally, a distributed lock so that several replicas sharing
a Redis instance still process one session's messages one at a time.
*/
package session
