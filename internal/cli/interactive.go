package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/jpoffo/valuador/config"
)

// runInteractive drives the prompt-driven analysis loop. Configuration edits
// made while the loop runs are picked up on the next round through the
// manager's file watch.
func runInteractive(ctx context.Context, mgr *config.Manager) error {
	DisplayWelcomeBanner()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := mgr.Watch(ctx, func(cfg config.Config) {
		fmt.Println()
		DisplayInfo("Configuration reloaded from " + mgr.Path())
	}); err != nil {
		DisplayWarning(fmt.Sprintf("Configuration watch unavailable: %v", err))
	}

	for {
		selections, err := GatherSelections(mgr.Get())
		if err != nil {
			if isInterrupt(err) {
				fmt.Println("\n👋 Thank you for using Valuador!")
				return nil
			}
			DisplayError(err)
			continue
		}

		confirmed, err := PromptForConfirmation(selections)
		if err != nil {
			if isInterrupt(err) {
				fmt.Println("\n👋 Thank you for using Valuador!")
				return nil
			}
			return err
		}

		if confirmed {
			cfg := mgr.Get()
			if err := NewAnalyzer(&cfg).RunValue(ctx, selections); err != nil {
				DisplayError(err)
			}
		}

		again, err := PromptForRestartOrExit()
		if err != nil || !again {
			fmt.Println("👋 Thank you for using Valuador!")
			return nil
		}
		DisplayRule()
	}
}

func isInterrupt(err error) bool {
	return errors.Is(err, terminal.InterruptErr)
}
