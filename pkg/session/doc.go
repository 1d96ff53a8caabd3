/*
Package session serializes conversation turns and orchestrates their persistence.

A Manager guarantees that two utterances for the same session never advance concurrently,
which keeps the engine's state transitions linear. Locks are local by default and can be
backed by a ports.DistributedLocker (e.g., Redis) when several replicas serve the same
sessions.
*/
package session
