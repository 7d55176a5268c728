package cmd

import (
	"context"
	"fmt"

	"github.com/manifoldco/promptui"
)

// promptOperator asks the person at the terminal to act in the browser.
type promptOperator struct{}

// verificationPrompt accepts a bare Enter as confirmation.
func verificationPrompt(message string) promptui.Prompt {
	return promptui.Prompt{
		Label:     fmt.Sprintf("%s. Done", message),
		IsConfirm: true,
		Default:   "y",
	}
}

func (promptOperator) WaitForManualAction(ctx context.Context, message string) error {
	p := verificationPrompt(message)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
