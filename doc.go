/*
Package slotfill is a mixed-initiative slot-filling dialogue engine.

A template declares the fields to collect ("main" fields, optionally split into "sub" fields
such as the day, month and year of a date). The engine drives the conversation one utterance at
a time: it extracts values for any pending field from free text, decomposes partial answers,
asks for what is missing, confirms each field and escalates re-prompts on silence or
misunderstanding.

The transition function is pure. Each call to Advance takes a state and returns a new one, so a
host can persist, replay or discard conversations freely.

# Usage

	tpl, err := schema.Load("registration.yaml")
	if err != nil {
		log.Fatal(err)
	}

	eng := slotfill.New(slotfill.WithRegion("IT"))
	state, err := eng.Init(ctx, "session-1", tpl)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(eng.Prompt(tpl, state).Text)
	state, err = eng.Advance(ctx, state, "I'm Mario Rossi, born 12/05/1990")

# Packages

  - pkg/domain: nodes, plan, memory and conversation state.
  - pkg/kinds: value detectors and locale tables.
  - pkg/extract: composite and mixed-initiative extraction.
  - pkg/schema: template validation and decoding.
  - pkg/messages: prompt key resolution.
  - pkg/enrich: background enrichment merged with fill-if-empty.
  - pkg/adapters: HTTP, MCP, Redis, Loam and in-memory integrations.
*/
package slotfill
