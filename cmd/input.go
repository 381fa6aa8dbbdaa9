package cmd

import (
	"fmt"
	"io"
	"os"
)

// readText returns the document to process: --text when given, otherwise
// the file named by the first argument, or stdin for "-" or no argument.
func readText(args []string, text string, stdin io.Reader) (string, error) {
	if text != "" {
		if len(args) > 0 {
			return "", fmt.Errorf("use either --text or a file argument, not both")
		}
		return text, nil
	}

	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}
