package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/loansight/loansight"
	"github.com/loansight/loansight/common/logger"
	"github.com/loansight/loansight/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var verbose bool

	root := &cobra.Command{
		Use:     "loansight",
		Short:   "Natural-language insights over loan application decisions",
		Version: loansight.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if verbose {
				logger.SetLevel(zapcore.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config yaml (env-based config when omitted)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newChatCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv(), nil
}

func newChatCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive query session against the loan dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			app, err := loansight.NewApp(cfg)
			if err != nil {
				return err
			}

			sessionID := uuid.NewString()
			fmt.Printf("loansight %s — ask about loan decisions (\"exit\" to quit, \"clear\" to forget history)\n", loansight.Version)

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				query := strings.TrimSpace(scanner.Text())
				switch {
				case query == "":
					continue
				case query == "exit" || query == "quit":
					return nil
				case query == "clear":
					app.Orchestrator.ClearHistory(sessionID)
					fmt.Println("history cleared")
					continue
				}

				resp, err := app.Orchestrator.Resolve(context.Background(), sessionID, query)
				if err != nil {
					fmt.Printf("error: %v\n", err)
					continue
				}
				fmt.Println()
				fmt.Println(resp.Summary)
				for _, p := range resp.EvidencePoints {
					fmt.Println("  - " + p)
				}
				for _, n := range resp.RiskNotes {
					fmt.Println("  ! " + n)
				}
				fmt.Println()
				fmt.Println(resp.ComplianceDisclaimer)
				fmt.Println()
			}
		},
	}
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline as an MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			app, err := loansight.NewApp(cfg)
			if err != nil {
				return err
			}
			// stdout carries the protocol; keep logs off it.
			logger.Quiet()
			return server.ServeStdio(loansight.NewMCPServer(app))
		},
	}
}
