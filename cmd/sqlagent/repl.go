package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/petasbytes/sqlagent/internal/agent"
	"github.com/petasbytes/sqlagent/internal/sqlite"
)

var (
	youLabel   = color.New(color.FgHiBlue).Sprint("You")
	agentLabel = color.New(color.FgHiGreen).Sprint("Agent")
)

// repl asks one question per input line until EOF, "exit", or cancellation.
func (a *app) repl(ctx context.Context, in io.Reader, out io.Writer, ag *agent.Agent, db sqlite.Conn) error {
	fmt.Fprintln(out, "Ask about your database (Ctrl-C or \"exit\" to quit)")

	scanner := bufio.NewScanner(in)
	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprintf(out, "%s: ", youLabel)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nExiting...")
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(out)
				return scanner.Err()
			}
		}

		question := strings.TrimSpace(line)
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		fmt.Fprintf(out, "%s: ", agentLabel)
		if err := a.ask(ctx, out, ag, db, question); err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out, "\nExiting...")
				return nil
			}
			a.log.Error("question failed", "error", err)
		}
	}
}
