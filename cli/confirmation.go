package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// confirm prompts the operator for a yes/no answer.
// Returns true if the operator confirms, false otherwise.
func confirm(message string) bool {
	fmt.Printf("%s (yes/no): ", message)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y"
}

// confirmExact prompts the operator to type an exact string for confirmation.
// Returns true if the operator types the exact string, false otherwise.
func confirmExact(message, expected string) bool {
	fmt.Printf("%s\nType '%s' to confirm: ", message, expected)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == expected
}

// checkConfirmation gates a destructive session-store operation (gc, purge)
// behind a confirmation prompt when the active environment's config asks for
// one. The production environment requires the operator to type the
// environment name back rather than just "yes" — a GC or purge against the
// wrong DSN signs out every session row it touches.
func (app *App) checkConfirmation(operation string) error {
	if !app.requiresConfirmation() {
		return nil
	}

	env := app.getEnvironmentName()
	message := fmt.Sprintf("⚠️  WARNING: about to run %s against the %s session store\nDriver: %s\nDSN: %s",
		operation, strings.ToUpper(env), app.config.Driver, app.config.DSN)

	if env == "production" {
		if !confirmExact(message, "production") {
			return fmt.Errorf("operation cancelled")
		}
	} else {
		if !confirm(message + "\nContinue?") {
			return fmt.Errorf("operation cancelled")
		}
	}

	return nil
}
