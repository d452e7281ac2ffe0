package main

import (
	"fmt"
	"github.com/reweave/reweave/internal/config"
	"github.com/reweave/reweave/internal/recorder/instrument"
	"github.com/reweave/reweave/internal/recorder/runlog"
	"go.uber.org/zap"
	"strings"
	"time"
)

// demo records one run of instrumented calls, including one that fails on
// a malformed model name so the error path shows up in the viewer.

var client = newModelClient("demo-small-1")

func ask(prompt string, system string) (string, error) {
	return client.complete("demo-small-1", system, prompt)
}

func summarize(text string) (string, error) {
	return client.complete("demo-small-1", "Summarize the following text in one sentence.", text)
}

func translate(text string, language string) (string, error) {
	return client.complete("demo-small-1", "Translate the following text to "+language+".", text)
}

func classifySentiment(text string) (string, error) {
	return client.complete("demo-small-1", "Classify the sentiment as positive, negative, or neutral.", text)
}

func brokenCall(prompt string) (string, error) {
	// Bad model name so we get an error trace.
	return client.complete("demo-999-fake", "You are helpful.", prompt)
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	log := runlog.NewWriter(cfg.RunsDir, runlog.NewRunID(time.Now()))
	defer log.Close()
	rec := instrument.NewRecorder(log, logger)

	wrappedAsk := instrument.Wrap2(rec, ask)
	wrappedSummarize := instrument.Wrap1(rec, summarize)
	wrappedTranslate := instrument.Wrap2(rec, translate)
	wrappedSentiment := instrument.Wrap1(rec, classifySentiment)
	wrappedBroken := instrument.Wrap1(rec, brokenCall)

	answer, _ := wrappedAsk("What is the capital of France?", "You are a helpful assistant.")
	fmt.Println("ask:", answer)

	pirate, _ := wrappedAsk(
		"How do I check the type of a value?",
		"You are a coding assistant that talks like a pirate.",
	)
	fmt.Println("pirate ask:", pirate)

	summary, _ := wrappedSummarize(answer)
	fmt.Println("summarize:", summary)

	translation, _ := wrappedTranslate("Hello, how are you?", "Spanish")
	fmt.Println("translate:", translation)

	for _, text := range []string{
		"I love this, it's amazing!",
		"This is terrible and I hate it.",
		"The package arrived on Tuesday.",
	} {
		sentiment, _ := wrappedSentiment(text)
		fmt.Println("sentiment:", sentiment)
	}

	if _, err := wrappedBroken("This will fail"); err != nil {
		fmt.Println("broken_call error (expected):", err)
	}

	fmt.Println("run recorded:", log.RunID())
}

// modelClient is a stand-in for an outbound completion API: deterministic
// canned responses, an error for unknown model names.
type modelClient struct {
	known map[string]bool
}

func newModelClient(models ...string) *modelClient {
	known := make(map[string]bool, len(models))
	for _, m := range models {
		known[m] = true
	}
	return &modelClient{known: known}
}

func (c *modelClient) complete(model, system, input string) (string, error) {
	if !c.known[model] {
		return "", fmt.Errorf("model %q not found", model)
	}
	switch {
	case strings.Contains(system, "Summarize"):
		return shorten(input), nil
	case strings.Contains(system, "Translate"):
		return "[" + input + "]", nil
	case strings.Contains(system, "sentiment"):
		return sentimentOf(input), nil
	default:
		return "You asked: " + shorten(input), nil
	}
}

func shorten(s string) string {
	const max = 40
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

func sentimentOf(s string) string {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "love") || strings.Contains(lower, "amazing"):
		return "positive"
	case strings.Contains(lower, "hate") || strings.Contains(lower, "terrible"):
		return "negative"
	default:
		return "neutral"
	}
}
