// Package messages turns the text keys declared on template steps into literal prompts.
//
// A key is resolved against a translation table, then a fallback table, then a default
// template string; the result is interpolated with {{variable}} placeholders. PromptFor picks
// the key a conversation state calls for, including the escalation variants selected by the
// state's retry counters.
package messages
