package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"guidechat/internal/model"
	"guidechat/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const quitCommand = "/quit"

func newChatCmd() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Run the guided conversation in the terminal",
		Long: `Run the guided conversation in the terminal.

Type a reply, or the number of one of the listed options. Type /quit to exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			return runChat(ctx, a.chat, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "resume or name a session id")
	return cmd
}

// runChat reads one message per line from in until EOF, /quit or a
// finished search.
func runChat(ctx context.Context, chat *service.ChatService, sessionID string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Session %s. Type %s to exit.\n", sessionID, quitCommand)

	scanner := bufio.NewScanner(in)
	var options []string
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == quitCommand {
			return nil
		}
		line = pickOption(line, options)

		resp, err := chat.ProcessMessage(ctx, line, sessionID, nil)
		if err != nil {
			return err
		}
		printReply(out, resp)
		options = resp.Options

		if resp.Step == model.StepSearchResults {
			return nil
		}
	}
}

// pickOption maps "2" to the second listed option.
func pickOption(line string, options []string) string {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(options) {
		return line
	}
	return options[n-1]
}

func printReply(out io.Writer, resp *model.ChatResponse) {
	fmt.Fprintln(out, resp.Message)
	for i, opt := range resp.Options {
		fmt.Fprintf(out, "  %d. %s\n", i+1, opt)
	}
	if resp.Placeholder != "" {
		fmt.Fprintf(out, "  (%s)\n", resp.Placeholder)
	}
	for i, p := range resp.Properties {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, describeProperty(p))
	}
}

func describeProperty(p model.PropertyRecord) string {
	parts := []string{}
	if title := p.String("title"); title != "" {
		parts = append(parts, title)
	}
	if price, ok := p.Number("price"); ok {
		parts = append(parts, strconv.FormatFloat(price, 'f', -1, 64)+" đ")
	}
	if area, ok := p.Number("area"); ok {
		parts = append(parts, strconv.FormatFloat(area, 'f', -1, 64)+" m²")
	}
	if name := p.Map("location").String("provinceName"); name != "" {
		parts = append(parts, name)
	}
	if len(parts) == 0 {
		return "(no details)"
	}
	return strings.Join(parts, " | ")
}
