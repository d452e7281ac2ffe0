package correlation

import (
	"github.com/reweave/reweave/internal/recorder/model"
)

// DecoratorOffset is the number of lines above a function's recorded start
// line that the instrumentation attachment conventionally sits on.
const DecoratorOffset = 1

// FunctionSpan is the source-line highlight range for one function name:
// the attachment line just above the body through the body's last line.
type FunctionSpan struct {
	DecoratorLine int
	StartLine     int
	EndLine       int
}

// BuildSpans derives the highlight span for each function name observed in
// events. The first event (in the order supplied) carrying both line
// fields wins for its function; later events never change an existing
// entry, so a function re-defined mid-run keeps its original span.
// Functions never observed with line info are simply absent.
func BuildSpans(events []model.Event) map[string]FunctionSpan {
	spans := make(map[string]FunctionSpan)
	for _, event := range events {
		if event.Function == "" {
			continue
		}
		if event.SourceLineStart == nil || event.SourceLineEnd == nil {
			continue
		}
		if _, ok := spans[event.Function]; ok {
			continue
		}
		spans[event.Function] = FunctionSpan{
			DecoratorLine: *event.SourceLineStart - DecoratorOffset,
			StartLine:     *event.SourceLineStart,
			EndLine:       *event.SourceLineEnd,
		}
	}
	return spans
}
