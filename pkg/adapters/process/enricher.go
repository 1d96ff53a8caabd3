// Package process runs enrichment lookups as local commands.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aretw0/slotfill/pkg/enrich"
)

// EnvPrefix prefixes the environment variables describing the request.
const EnvPrefix = "SLOTFILL_ARG_"

// Enricher implements enrich.Enricher by executing an allow-listed command.
// The request is written to stdin as JSON and also exposed as SLOTFILL_ARG_SESSION_ID,
// SLOTFILL_ARG_FIELD_ID and SLOTFILL_ARG_TEXT. The command answers with an enrich.Response
// on stdout; empty output means nothing was found.
type Enricher struct {
	command string
	args    []string
	env     []string
	baseDir string
}

// Option configures the enricher.
type Option func(*Enricher)

// WithBaseDir sets the working directory of the command.
func WithBaseDir(dir string) Option {
	return func(e *Enricher) {
		e.baseDir = dir
	}
}

// WithEnv adds KEY=VALUE entries to the command environment.
func WithEnv(env ...string) Option {
	return func(e *Enricher) {
		e.env = append(e.env, env...)
	}
}

// New creates an enricher running command with fixed args.
// Request data never reaches the argument list, so it cannot inject flags.
func New(command string, args []string, opts ...Option) *Enricher {
	e := &Enricher{command: command, args: args}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse splits a command line on whitespace. It returns nil for a blank line.
func Parse(line string, opts ...Option) *Enricher {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return New(fields[0], fields[1:], opts...)
}

// Enrich implements enrich.Enricher. A non-zero exit is an error carrying stderr.
func (e *Enricher) Enrich(ctx context.Context, req enrich.Request) (enrich.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return enrich.Response{}, err
	}

	cmd := exec.CommandContext(ctx, e.command, e.args...)
	cmd.Dir = e.baseDir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(cmd.Environ(), e.env...)
	cmd.Env = append(cmd.Env,
		EnvPrefix+"SESSION_ID="+req.SessionID,
		EnvPrefix+"FIELD_ID="+req.FieldID,
		EnvPrefix+"TEXT="+req.Text,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return enrich.Response{}, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return enrich.Response{}, fmt.Errorf("enrich command exited with %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return enrich.Response{}, fmt.Errorf("enrich command failed: %w", err)
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return enrich.Response{}, nil
	}
	var resp enrich.Response
	if err := json.Unmarshal(out, &resp); err != nil {
		return enrich.Response{}, fmt.Errorf("enrich command returned invalid JSON: %w", err)
	}
	return resp, nil
}
