package cli

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/testutil"
)

// ExecuteCLICommand runs one command the way main would, capturing stdout.
// Build a fresh command with its constructor per invocation; cobra flag
// state does not survive reuse.
func ExecuteCLICommand(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	cmd.SetArgs(args)
	// Disable usage output on error for cleaner test output
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	var executeErr error
	output := testutil.CaptureOutput(t, func() {
		executeErr = cmd.Execute()
	})

	return output, executeErr
}

// ParseJSON parses JSON output from CLI commands
func ParseJSON(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Failed to parse JSON output: %v\nOutput: %s", err, output)
	}

	return result
}

// Data unwraps a success envelope's payload as an object.
func Data(t *testing.T, envelope map[string]interface{}) map[string]interface{} {
	t.Helper()

	if success, _ := envelope["success"].(bool); !success {
		t.Fatalf("Expected a success envelope, got %+v", envelope)
	}
	data, ok := envelope["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected an object payload, got %+v", envelope["data"])
	}
	return data
}

// IDString renders a JSON-decoded numeric ID back into the decimal string
// a follow-up command takes as an argument.
func IDString(t *testing.T, id interface{}) string {
	t.Helper()

	num, ok := id.(float64)
	if !ok {
		t.Fatalf("Expected a numeric ID, got %T (%v)", id, id)
	}
	return strconv.FormatInt(int64(num), 10)
}

// Rows unwraps a success envelope's payload as a list.
func Rows(t *testing.T, envelope map[string]interface{}) []interface{} {
	t.Helper()

	if success, _ := envelope["success"].(bool); !success {
		t.Fatalf("Expected a success envelope, got %+v", envelope)
	}
	rows, ok := envelope["data"].([]interface{})
	if !ok {
		t.Fatalf("Expected a list payload, got %+v", envelope["data"])
	}
	return rows
}
