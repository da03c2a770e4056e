// Package translate contains tests for the translation pipeline.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jannikbertram/Rire/messages"
)

func init() {
	// Keep retry backoff out of test runtime.
	baseRetryDelay = time.Millisecond
}

// sourceMap builds an ordered map with n keys msg0..msg(n-1).
func sourceMap(n int) *messages.Map {
	m := messages.New()
	for i := 0; i < n; i++ {
		m.Set(fmt.Sprintf("msg%d", i), fmt.Sprintf("Source text %d", i))
	}
	return m
}

// echoInvoker returns each batch's source mapping as a valid JSON response,
// with values prefixed so translated output is distinguishable.
func echoInvoker(calls *int) Invoker {
	return InvokerFunc(func(ctx context.Context, prompt string) (string, error) {
		*calls++
		// The batch object follows the instruction line; the system prompt
		// itself contains braces ({name} placeholder examples).
		idx := strings.Index(prompt, "following messages:")
		if idx < 0 {
			return "", fmt.Errorf("prompt missing instruction line")
		}
		idx += strings.Index(prompt[idx:], "{")
		m, err := messages.Parse([]byte(prompt[idx:]))
		if err != nil {
			return "", err
		}
		out := messages.New()
		for _, e := range m.Entries() {
			out.Set(e.Key, "translated: "+e.Value)
		}
		return string(out.Marshal()), nil
	})
}

// ---------------------------------------------------------------------------
// Orchestrator
// ---------------------------------------------------------------------------

func TestTranslateMessages_EmptyInput(t *testing.T) {
	calls := 0
	result, err := TranslateMessages(context.Background(), Options{
		Messages:   messages.New(),
		TargetLang: "fr",
		Invoker:    echoInvoker(&calls),
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	if result.Len() != 0 {
		t.Errorf("result has %d entries, want 0", result.Len())
	}
	if calls != 0 {
		t.Errorf("invoker called %d times for empty input, want 0", calls)
	}
}

func TestTranslateMessages_PreservesKeySetAndOrder(t *testing.T) {
	src := sourceMap(7)
	calls := 0

	result, err := TranslateMessages(context.Background(), Options{
		Messages:   src,
		TargetLang: "de",
		Invoker:    echoInvoker(&calls),
		BatchSize:  3,
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	srcKeys := src.Keys()
	gotKeys := result.Keys()
	if len(gotKeys) != len(srcKeys) {
		t.Fatalf("got %d keys, want %d", len(gotKeys), len(srcKeys))
	}
	for i := range srcKeys {
		if gotKeys[i] != srcKeys[i] {
			t.Errorf("key[%d] = %q, want %q", i, gotKeys[i], srcKeys[i])
		}
	}
	if v, _ := result.Get("msg4"); v != "translated: Source text 4" {
		t.Errorf("msg4 = %q", v)
	}
}

func TestTranslateMessages_BatchCountAndProgress(t *testing.T) {
	src := sourceMap(10)
	calls := 0

	var progress [][2]int
	_, err := TranslateMessages(context.Background(), Options{
		Messages:   src,
		TargetLang: "es",
		Invoker:    echoInvoker(&calls),
		BatchSize:  4,
		OnProgress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}

	// ceil(10/4) = 3 invocations and progress events.
	if calls != 3 {
		t.Errorf("invoker called %d times, want 3", calls)
	}
	want := [][2]int{{4, 10}, {8, 10}, {10, 10}}
	if len(progress) != len(want) {
		t.Fatalf("got %d progress events: %v", len(progress), progress)
	}
	for i := range want {
		if progress[i] != want[i] {
			t.Errorf("progress[%d] = %v, want %v", i, progress[i], want[i])
		}
	}
}

func TestTranslateMessages_UnparseableBatchFallsBackToSource(t *testing.T) {
	src := sourceMap(2)

	result, err := TranslateMessages(context.Background(), Options{
		Messages:   src,
		TargetLang: "it",
		Invoker: InvokerFunc(func(ctx context.Context, prompt string) (string, error) {
			return "Sorry, I cannot help with that.", nil
		}),
	})
	if err != nil {
		t.Fatalf("error: %v", err)
	}
	for _, e := range src.Entries() {
		got, ok := result.Get(e.Key)
		if !ok || got != e.Value {
			t.Errorf("%s = %q, want source %q", e.Key, got, e.Value)
		}
	}
}

func TestTranslateMessages_FatalErrorAbortsAndDiscardsPartialResults(t *testing.T) {
	src := sourceMap(6)
	calls := 0
	boom := errors.New("invalid api key")

	result, err := TranslateMessages(context.Background(), Options{
		Messages:   src,
		TargetLang: "nl",
		BatchSize:  2,
		Invoker: InvokerFunc(func(ctx context.Context, prompt string) (string, error) {
			calls++
			if calls == 2 {
				return "", boom
			}
			return `{}`, nil
		}),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if result != nil {
		t.Error("partial results should be discarded on failure")
	}
	// First batch succeeded, second failed fatally, third never issued.
	if calls != 2 {
		t.Errorf("invoker called %d times, want 2", calls)
	}
}

func TestTranslateMessages_CancelledBetweenBatches(t *testing.T) {
	src := sourceMap(4)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := TranslateMessages(ctx, Options{
		Messages:   src,
		TargetLang: "fr",
		BatchSize:  2,
		Invoker: InvokerFunc(func(c context.Context, prompt string) (string, error) {
			calls++
			cancel()
			return `{}`, nil
		}),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		t.Error("cancellation must not be reported as RateLimitError")
	}
	if calls != 1 {
		t.Errorf("invoker called %d times, want 1", calls)
	}
}

// ---------------------------------------------------------------------------
// Batch partitioner
// ---------------------------------------------------------------------------

func TestSplitEntries(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		batchSize int
		wantSizes []int
	}{
		{"empty", 0, 100, nil},
		{"single partial batch", 5, 100, []int{5}},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"trailing partial", 7, 3, []int{3, 3, 1}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"zero size means all at once", 4, 0, []int{4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entries := sourceMap(tc.n).Entries()
			batches := splitEntries(entries, tc.batchSize)
			if len(batches) != len(tc.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tc.wantSizes))
			}
			var flat []messages.Entry
			for i, b := range batches {
				if len(b) != tc.wantSizes[i] {
					t.Errorf("batch[%d] has %d entries, want %d", i, len(b), tc.wantSizes[i])
				}
				flat = append(flat, b...)
			}
			for i, e := range flat {
				if e.Key != entries[i].Key {
					t.Errorf("concatenated entry[%d] = %q, want %q", i, e.Key, entries[i].Key)
				}
			}
		})
	}
}
