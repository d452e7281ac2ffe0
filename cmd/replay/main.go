package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"github.com/dgraph-io/ristretto"
	"github.com/reweave/reweave/internal/config"
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/reweave/reweave/internal/viewer_server/service/correlation"
	"github.com/reweave/reweave/internal/viewer_server/service/playback"
	"github.com/reweave/reweave/internal/viewer_server/service/runstore"
	"github.com/reweave/reweave/pkg/cache"
	"go.uber.org/zap"
	"os"
	"sync"
)

const (
	colorReset = "\033[0m"
	colorGray  = "\033[90m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorRed   = "\033[1;31m"
)

// replay plays a recorded run back in the terminal, one call per step.
func main() {
	runID := flag.String("run", "", "run identifier to replay (default: most recent)")
	speed := flag.Float64("speed", 1, "playback speed multiplier")
	filter := flag.String("filter", "", "only replay calls to this function")
	flag.Parse()

	logger := zap.NewNop()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "cache:", err)
		os.Exit(1)
	}
	rs := runstore.NewStoreImpl(cfg.RunsDir, cache.NewReadCacheImpl[model.Event](rc), logger)

	if *runID == "" {
		runs, err := rs.ListRuns()
		if err != nil || len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "no runs recorded under", cfg.RunsDir)
			os.Exit(1)
		}
		*runID = runs[0].ID
	}

	events, err := rs.LoadEvents(*runID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load run:", err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Println("run", *runID, "has no events")
		return
	}

	spans := correlation.BuildSpans(events)

	done := make(chan struct{})
	var once sync.Once
	engine := playback.NewEngine(events, playback.TimerScheduler{}, func(ev model.Event, position, total int) {
		printEvent(ev, position, total, spans)
		if position == total-1 {
			once.Do(func() { close(done) })
		}
	})
	engine.SetSpeed(*speed)
	engine.SetFilter(*filter)

	fmt.Printf("replaying %s (%d events)\n\n", *runID, len(events))
	engine.Play()
	if st := engine.Status(); st.Total == 0 {
		fmt.Println("no events match filter", *filter)
		return
	}
	<-done
	engine.Pause()
}

func printEvent(ev model.Event, position, total int, spans map[string]correlation.FunctionSpan) {
	where := ""
	if span, ok := spans[ev.Function]; ok && ev.SourceFile != nil {
		where = fmt.Sprintf(" %s%s:%d-%d%s", colorGray, *ev.SourceFile, span.StartLine, span.EndLine, colorReset)
	}
	fmt.Printf("%s[%d/%d]%s %s%s%s (%.4fs)%s\n",
		colorGray, position+1, total, colorReset,
		colorCyan, ev.Function, colorReset, ev.DurationS, where)

	inputs, _ := json.Marshal(ev.Inputs)
	fmt.Printf("  inputs: %s\n", inputs)
	if ev.Failed() {
		fmt.Printf("  %serror: %s: %s%s\n", colorRed, ev.Error.Kind, ev.Error.Message, colorReset)
	} else {
		output, _ := json.Marshal(ev.Output)
		fmt.Printf("  %soutput: %s%s\n", colorGreen, output, colorReset)
	}
	fmt.Println()
}
