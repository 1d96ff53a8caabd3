/*
Package runner drives a slotfill conversation over line-based I/O.

It bridges the engine (Init/Advance/Prompt) and the outside world: each loop renders the
prompt the state calls for, records it in the transcript, reads one utterance, sanitizes it
and advances. Sessions are persisted through an optional ports.StateStore.

# Key Components

  - Runner: the interactive loop.
  - IOHandler: decouples how turns are shown and read (text, JSON lines).
  - TextHandler: interactive terminal usage, with an optional ContentRenderer.
  - Respond: one engine turn plus the prompt that follows it, shared by the HTTP and MCP adapters.

# Usage

	r := runner.NewRunner(
		runner.WithSessionID("user-1"),
		runner.WithStore(store),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	final, err := r.Run(ctx, engine, tpl, nil)
*/
package runner
