package notifier

import (
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"sync"
)

var tagPattern = regexp.MustCompile(`</?(b|pre)>`)

// ConsoleNotifier prints rendered messages to a writer, stripping Telegram HTML.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a notifier writing to out.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// Display writes text followed by a blank line.
func (c *ConsoleNotifier) Display(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "%s\n\n", PlainText(text))
	return err
}

// PlainText removes the HTML markup used for Telegram.
func PlainText(text string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
}
