// Package ui implements the scheduler node's operator surface as a small
// line-based console. The original device ships a graphical schedule
// entry screen; this console covers the same surface at its interface
// boundary: add entry, clear all, list entries, display status.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/medibox-iot/medibox/core/schedule"
	"github.com/medibox-iot/medibox/infra/logger"
)

// Console reads operator commands from in and writes feedback to out.
type Console struct {
	store *schedule.Store
	in    io.Reader
	out   io.Writer
	log   logger.Logger
}

// NewConsole creates the console bound to the given store.
func NewConsole(store *schedule.Store, in io.Reader, out io.Writer, log logger.Logger) *Console {
	return &Console{store: store, in: in, out: out, log: log}
}

// Notify displays a status message to the operator.
func (c *Console) Notify(msg string) {
	fmt.Fprintf(c.out, "* %s\n", msg)
}

// Run processes operator commands until the context is cancelled or input
// is exhausted.
func (c *Console) Run(ctx context.Context) {
	c.prompt()
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			c.handle(strings.TrimSpace(line))
		}
	}
}

func (c *Console) prompt() {
	if c.store.Full() {
		fmt.Fprintln(c.out, "All slots scheduled.")
		return
	}
	fmt.Fprintf(c.out, "Enter time for slot %d (add HH:MM):\n", c.store.NextSlot())
}

func (c *Console) handle(line string) {
	switch {
	case line == "":
	case strings.HasPrefix(line, "add "):
		c.add(strings.TrimSpace(strings.TrimPrefix(line, "add ")))
	case line == "list":
		c.list()
	case line == "clear":
		c.store.Clear()
		fmt.Fprintln(c.out, "All slots cleared")
		c.prompt()
	case line == "help":
		fmt.Fprintln(c.out, "commands: add HH:MM | list | clear | help")
	default:
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", line)
	}
}

func (c *Console) add(t string) {
	entry, err := c.store.Add(t)
	switch {
	case err == nil:
		fmt.Fprintf(c.out, "%s : Slot %d\n", entry.Time, entry.Slot)
		c.log.Infof("added %s for slot %d", entry.Time, entry.Slot)
		c.prompt()
	case errors.Is(err, schedule.ErrCapacity):
		fmt.Fprintln(c.out, "All slots scheduled.")
	case schedule.IsValidation(err):
		fmt.Fprintln(c.out, err.Error())
	default:
		fmt.Fprintf(c.out, "add failed: %v\n", err)
	}
}

func (c *Console) list() {
	entries := c.store.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no scheduled slots")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "%s : Slot %d\n", e.Time, e.Slot)
	}
}
