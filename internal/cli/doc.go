// Package cli wires configuration into engines, stores and adapters for the slotfill commands.
package cli
