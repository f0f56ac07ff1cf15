package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msuatafdeneme-art/webchat-client/internal/chat"
)

// consoleEvents renders the conversation to stdout.
type consoleEvents struct{}

func (consoleEvents) MessageAppended(msg chat.Message) {
	label := string(msg.Sender)
	if msg.Sender == chat.SenderAgent && msg.AgentName != "" {
		label = msg.AgentName
	}
	fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04"), label, msg.Text)
}

func (consoleEvents) TypingChanged(state chat.TypingState) {
	if state.Visible {
		fmt.Printf("... %s yazıyor\n", state.AgentName)
	}
}

func (consoleEvents) StateChanged(state chat.State) {
	fmt.Printf("-- %s --\n", state)
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFromEnv()
			svc := chat.NewService(cfg, chat.NewHTTPBackend(cfg), chat.WithEvents(consoleEvents{}))

			in := bufio.NewScanner(os.Stdin)
			customer, err := readCustomer(in)
			if err != nil {
				return err
			}

			if err := svc.StartSession(cmd.Context(), customer); err != nil {
				return err
			}
			defer svc.EndSession()

			fmt.Println("type your message, /end to finish, /new to restart")
			for in.Scan() {
				line := strings.TrimSpace(in.Text())
				switch line {
				case "":
					continue
				case "/end":
					svc.EndSession()
					return nil
				case "/new":
					svc.Reset()
					customer, err = readCustomer(in)
					if err != nil {
						return err
					}
					if err := svc.StartSession(cmd.Context(), customer); err != nil {
						return err
					}
				default:
					_ = svc.Send(cmd.Context(), line)
				}
			}
			return in.Err()
		},
	}
}

// readCustomer runs the pre-chat form on stdin until the input passes
// the same validation the widget form enforces.
func readCustomer(in *bufio.Scanner) (chat.Customer, error) {
	for {
		fields := make([]string, 0, 4)
		for _, label := range []string{"name", "email", "phone", "accept all consents? (yes/no)"} {
			fmt.Printf("%s: ", label)
			if !in.Scan() {
				if err := in.Err(); err != nil {
					return chat.Customer{}, err
				}
				return chat.Customer{}, io.EOF
			}
			fields = append(fields, strings.TrimSpace(in.Text()))
		}

		customer := chat.Customer{Name: fields[0], Email: fields[1], Phone: fields[2]}
		if strings.EqualFold(fields[3], "yes") || strings.EqualFold(fields[3], "y") {
			customer.KVKK = true
			customer.Commercial = true
			customer.Consent = true
		}

		if err := customer.Validate(); err != nil {
			fmt.Printf("invalid input: %v\n", err)
			continue
		}
		return customer, nil
	}
}
