package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/dramaflow"
	"github.com/aretw0/dramaflow/internal/presentation/graph"
	"github.com/aretw0/dramaflow/internal/presentation/tui"
	"github.com/aretw0/dramaflow/internal/runtime"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/sanitize"
)

// ChatEngine is what the REPL drives. *dramaflow.Engine implements it.
type ChatEngine interface {
	Chat(ctx context.Context, sessionID, message string) (*dramaflow.ChatResult, error)
	Reset(ctx context.Context, sessionID string) (bool, error)
	Workflow(ctx context.Context, sessionID string) (*domain.WorkflowState, error)
	Agents() []domain.AgentInfo
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	SessionID string
	// Render formats agent replies. Defaults to tui.Plain.
	Render tui.Render
	// Banner prints the banner for Version first.
	Banner  bool
	Version string
}

const chatHelp = `Commands:
  /state    show the workflow state
  /graph    show the workflow as a Mermaid chart
  /agents   list the agents
  /reset    start the session over
  /help     show this help
  q, quit, exit   leave`

// RunChat reads one message per line from in and prints each reply to out, until EOF, a quit
// command or ctx is cancelled.
func RunChat(ctx context.Context, eng ChatEngine, in io.Reader, out io.Writer, opts ChatOptions) error {
	if opts.Render == nil {
		opts.Render = tui.Plain
	}
	if opts.SessionID == "" {
		opts.SessionID = dramaflow.DefaultSessionID
	}
	if opts.Banner {
		tui.PrintBanner(out, opts.Version)
	}
	printSystemMessage(out, "Session '%s' active. Type /help for commands.", opts.SessionID)

	scanner := bufio.NewScanner(NewInterruptibleReader(in, ctx.Done()))
	scanner.Buffer(make([]byte, 0, 64*1024), sanitize.MaxInputSize()+1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			if err := scanner.Err(); err != nil && !isInterrupted(err) {
				return err
			}
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			printSystemMessage(out, "Bye!")
			return nil
		}

		if strings.HasPrefix(line, "/") {
			if err := runCommand(ctx, eng, out, opts, line); err != nil {
				return err
			}
			continue
		}

		message, err := sanitize.Input(line)
		if err != nil {
			printSystemMessage(out, "Input rejected: %v", err)
			continue
		}
		res, err := eng.Chat(ctx, opts.SessionID, message)
		if err != nil {
			if isInterrupted(err) {
				return nil
			}
			return err
		}

		fmt.Fprintf(out, "[%s]\n", res.AgentName)
		fmt.Fprint(out, opts.Render(res.Response))
		for _, item := range res.RankingData {
			fmt.Fprintf(out, "  %d. 《%s》 %s ⭐%d\n", item.ID, item.Title, item.Views, item.Score)
		}
	}
}

func runCommand(ctx context.Context, eng ChatEngine, out io.Writer, opts ChatOptions, line string) error {
	switch line {
	case "/help":
		fmt.Fprintln(out, chatHelp)
	case "/state":
		state, err := eng.Workflow(ctx, opts.SessionID)
		if err != nil {
			return err
		}
		raw, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(raw))
	case "/graph":
		state, err := eng.Workflow(ctx, opts.SessionID)
		if err != nil {
			return err
		}
		fmt.Fprint(out, graph.GenerateMermaid(runtime.Edges(), &graph.Overlay{Current: state.CurrentStep}))
	case "/agents":
		for _, a := range eng.Agents() {
			fmt.Fprintf(out, "%s %s (%s): %s\n", a.Icon, a.Name, a.ID, a.Description)
		}
	case "/reset":
		found, err := eng.Reset(ctx, opts.SessionID)
		if err != nil {
			return err
		}
		if found {
			printSystemMessage(out, "Session '%s' reset.", opts.SessionID)
		} else {
			printSystemMessage(out, "Session '%s' not found, nothing to reset.", opts.SessionID)
		}
	default:
		printSystemMessage(out, "Unknown command %s. Type /help.", line)
	}
	return nil
}
