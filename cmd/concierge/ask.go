package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/campushq/concierge/internal/cli"
	"github.com/campushq/concierge/internal/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Submit a single request or start an interactive session",
	Long: `Runs one turn against the engine and prints the reply. With no
arguments, starts an interactive loop sharing one session.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		sessionID, _ := cmd.Flags().GetString("session")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Printf("Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		logger := cli.NewLogger(cfg)

		rt, err := cli.CreateRuntime(cmd.Context(), cfg, logger)
		if err != nil {
			fmt.Printf("Error initializing concierge: %v\n", err)
			os.Exit(1)
		}
		defer rt.Close()

		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		if len(args) > 0 {
			runTurn(cmd, rt, sessionID, strings.Join(args, " "))
			return
		}

		fmt.Println("Interactive session started. Type 'exit' to quit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return
			}
			runTurn(cmd, rt, sessionID, line)
		}
	},
}

func runTurn(cmd *cobra.Command, rt *cli.Runtime, sessionID, message string) {
	reply, err := rt.Engine.SubmitTurn(cmd.Context(), sessionID, message)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(reply.Message)
	if reply.Visualization != nil {
		fmt.Printf("[%s chart attached: %s]\n",
			reply.Visualization.ChartType, reply.Visualization.Explanation)
	}
}

func init() {
	askCmd.Flags().String("session", "", "Session ID to continue (default: new session)")
	rootCmd.AddCommand(askCmd)
}
