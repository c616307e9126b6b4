// Package migration implements the startup dimension-compatibility
// guard: detect an embedder/store dimension mismatch and, on
// operator approval, queue every document for re-embedding.
package migration

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/momo-run/momo/internal/store"
	"go.uber.org/zap"
)

// OperatorPrompt asks a yes/no question on a controlled channel and
// reports whether the operator affirmatively approved.
type OperatorPrompt interface {
	Confirm(question string) bool
}

// StdioPrompt asks on stdin/stdout, the interactive default.
type StdioPrompt struct {
	In *bufio.Reader
}

func NewStdioPrompt(in *bufio.Reader) *StdioPrompt {
	return &StdioPrompt{In: in}
}

func (p *StdioPrompt) Confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := p.In.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// AlwaysApprove approves every prompt, for the operator's
// force-rebuild flag.
type AlwaysApprove struct{}

func (AlwaysApprove) Confirm(string) bool { return true }

// Guard runs the dimension-compatibility check exactly once at
// startup.
type Guard struct {
	store  store.Store
	prompt OperatorPrompt
	log    *zap.Logger
}

func NewGuard(st store.Store, prompt OperatorPrompt, log *zap.Logger) *Guard {
	return &Guard{store: st, prompt: prompt, log: log}
}

// Check compares the persisted embedding dimension to currentDim. An
// absent record is initialized and considered compatible. A
// mismatch proceeds only when the prompt (force-rebuild or
// interactive) approves; on approval, every document is queued for
// reprocessing and all chunks are dropped so the pipeline re-embeds
// from scratch, and the new dimension is persisted.
func (g *Guard) Check(ctx context.Context, currentDim int) error {
	persisted, err := g.store.GetEmbeddingDimension(ctx)
	if err != nil {
		return err
	}
	if persisted == nil {
		g.log.Info("no embedding dimension recorded yet, initializing", zap.Int("dimension", currentDim))
		return g.store.SetEmbeddingDimension(ctx, currentDim)
	}
	if *persisted == currentDim {
		return nil
	}

	g.log.Warn("embedding dimension mismatch detected",
		zap.Int("persisted", *persisted), zap.Int("current", currentDim))

	question := fmt.Sprintf(
		"Embedding dimension changed from %d to %d. Re-embedding requires deleting all chunks and queuing documents for reprocessing. Proceed?",
		*persisted, currentDim)
	if !g.prompt.Confirm(question) {
		return fmt.Errorf("embedding dimension mismatch (%d -> %d) not approved by operator", *persisted, currentDim)
	}

	if err := g.store.QueueAllDocumentsForReprocessing(ctx); err != nil {
		return err
	}
	if err := g.store.DeleteAllChunks(ctx); err != nil {
		return err
	}
	return g.store.SetEmbeddingDimension(ctx, currentDim)
}
