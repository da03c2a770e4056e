// Package translate implements AI-powered translation of locale messages.
//
// The pipeline partitions an ordered key/value message map into bounded
// batches, sends each batch to an abstract model invocation capability,
// recovers a structured mapping from the free-form response, and retries
// under provider rate limiting. Batches are processed strictly sequentially;
// a call either returns the complete translated map or fails as a whole.
package translate

import (
	"context"
	"fmt"

	"github.com/jannikbertram/Rire/messages"
)

// DefaultBatchSize is how many messages are sent per model invocation.
const DefaultBatchSize = 100

// Invoker is the model invocation capability: given a prompt, return the
// model's text response or fail. Errors carry a message the retry layer
// classifies for rate-limit indicators.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, prompt string) (string, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Options controls a TranslateMessages call.
type Options struct {
	// Messages is the ordered source key/value map to translate.
	Messages *messages.Map
	// TargetLang is the target language code (e.g. "fr", "pt-BR").
	TargetLang string
	// Context is optional free-text product context embedded in the system
	// prompt. Empty means no context section.
	Context string
	// Invoker is the model invocation capability.
	Invoker Invoker
	// BatchSize is how many messages to translate per invocation (0 = DefaultBatchSize).
	BatchSize int
	// OnProgress is called after each completed batch with the cumulative
	// number of messages processed and the total message count.
	OnProgress func(done, total int)
	// OnLog emits log messages during translation.
	OnLog func(format string, args ...any)
	// Verbose enables per-batch logging.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) effectiveBatchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// splitEntries divides entries into batches of the given size, preserving
// order. The last batch may be smaller.
func splitEntries(entries []messages.Entry, batchSize int) [][]messages.Entry {
	if len(entries) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize >= len(entries) {
		return [][]messages.Entry{entries}
	}
	var batches [][]messages.Entry
	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batches = append(batches, entries[i:end])
	}
	return batches
}

// TranslateMessages translates all messages into the target language.
//
// The result has exactly the input's key set in the input's order. A batch
// whose response cannot be parsed keeps its source values (see
// parseBatchResponse); a rate-limit exhaustion or fatal invocation error
// aborts the call, discarding results from already-completed batches.
func TranslateMessages(ctx context.Context, opts Options) (*messages.Map, error) {
	if opts.Messages == nil || opts.Messages.Len() == 0 {
		return messages.New(), nil
	}
	if opts.Invoker == nil {
		return nil, fmt.Errorf("translate: no invoker configured")
	}

	systemPrompt := BuildSystemPrompt(opts.TargetLang, opts.Context)

	entries := opts.Messages.Entries()
	batches := splitEntries(entries, opts.effectiveBatchSize())
	total := len(entries)

	result := messages.New()
	done := 0

	for i, batch := range batches {
		// Cooperative cancellation between batches.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if opts.Verbose {
			opts.log("  Batch %d/%d (%d messages)", i+1, len(batches), len(batch))
		}

		prompt := BuildTranslationPrompt(systemPrompt, batch)
		text, err := invokeWithRetry(ctx, opts.Invoker, prompt)
		if err != nil {
			return nil, err
		}

		for _, e := range parseBatchResponse(text, batch).Entries() {
			result.Set(e.Key, e.Value)
		}

		done += len(batch)
		if opts.OnProgress != nil {
			opts.OnProgress(done, total)
		}
	}

	return result, nil
}
