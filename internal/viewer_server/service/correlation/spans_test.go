package correlation

import (
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/stretchr/testify/assert"
	"testing"
)

func event(function string, start, end int) model.Event {
	return model.Event{
		Function:        function,
		SourceLineStart: &start,
		SourceLineEnd:   &end,
	}
}

func TestBuildSpans(t *testing.T) {
	t.Run("Derives one span per function from the first observed event", func(t *testing.T) {
		events := []model.Event{
			event("add", 10, 11),
			event("add", 10, 11),
			event("multiply", 20, 22),
		}

		spans := BuildSpans(events)
		assert.Equal(t, map[string]FunctionSpan{
			"add":      {DecoratorLine: 9, StartLine: 10, EndLine: 11},
			"multiply": {DecoratorLine: 19, StartLine: 20, EndLine: 22},
		}, spans)
	})

	t.Run("Later events never change an existing span", func(t *testing.T) {
		events := []model.Event{
			event("add", 10, 11),
			event("add", 50, 60),
		}

		spans := BuildSpans(events)
		assert.Equal(t, FunctionSpan{DecoratorLine: 9, StartLine: 10, EndLine: 11}, spans["add"])
	})

	t.Run("Is order-sensitive by design", func(t *testing.T) {
		reversed := []model.Event{
			event("add", 50, 60),
			event("add", 10, 11),
		}

		spans := BuildSpans(reversed)
		assert.Equal(t, FunctionSpan{DecoratorLine: 49, StartLine: 50, EndLine: 60}, spans["add"])
	})

	t.Run("Is idempotent", func(t *testing.T) {
		events := []model.Event{
			event("add", 10, 11),
			event("multiply", 20, 22),
		}

		assert.Equal(t, BuildSpans(events), BuildSpans(events))
	})

	t.Run("Skips events without line info or function name", func(t *testing.T) {
		start := 5
		events := []model.Event{
			{Function: "add"},
			{Function: "add", SourceLineStart: &start},
			event("", 10, 11),
		}

		assert.Empty(t, BuildSpans(events))
	})
}
