package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/msuatafdeneme-art/webchat-client/internal/stub"
)

func newStubCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run the local fake chat backend",
		RunE: func(_ *cobra.Command, _ []string) error {
			cwid := os.Getenv("CHAT_CWID")
			if cwid == "" {
				cwid = "chat-widget-key"
			}
			securityToken := os.Getenv("CHAT_SECURITY_TOKEN")
			if securityToken == "" {
				securityToken = "security-token-from-chat-widget"
			}

			server := stub.New(cwid, securityToken)
			log.Info().Str("addr", addr).Msg("stub backend listening")
			return http.ListenAndServe(addr, server.Routes())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8081", "listen address")
	return cmd
}
