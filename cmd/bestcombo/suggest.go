package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
	"github.com/adrior11/check24-best-combination-submission/internal/logging"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <input>",
	Short: "Print the server's completion for input",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	logging.InitStderr(flagVerbose)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input := strings.Join(args, " ")
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input is blank")
	}
	suggestion, err := newAPI(cfg).GetSuggestion(context.Background(), input)
	if err != nil {
		logging.Debug("suggest failed", "err", err)
		return errors.New(combo.UserMessage(err))
	}
	if suggestion == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "no suggestion")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), suggestion)
	return nil
}
