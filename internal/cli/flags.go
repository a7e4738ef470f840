package cli

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

// AddScopeFlags registers the flags shared by every scoped command. The
// project identifier is required; the actor flags feed identity resolution.
func AddScopeFlags(cmd *cobra.Command) {
	cmd.Flags().String("project", "", "Project identifier (required)")
	if err := cmd.MarkFlagRequired("project"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("actor", "", "Acting identity (defaults to BACKLOG_ACTOR, then the OS user)")
	cmd.Flags().String("as", "", "Record actions on behalf of another identity")
}

// AddActorFlag registers just the identity flag, for unscoped commands that
// still attribute their writes.
func AddActorFlag(cmd *cobra.Command) {
	cmd.Flags().String("actor", "", "Acting identity (defaults to BACKLOG_ACTOR, then the OS user)")
}

// AddOutputFlags registers the agent-facing output mode flags.
// Every command carries these.
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output in JSON format")
	cmd.Flags().Bool("quiet", false, "Minimal output (ID only)")
}

// FormatterFrom builds the output formatter from a command's mode flags.
func FormatterFrom(cmd *cobra.Command) *OutputFormatter {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return &OutputFormatter{JSON: jsonOutput, Quiet: quietMode}
}

// Fail reports err through the formatter and exits with the mapped code.
func Fail(f *OutputFormatter, err error) {
	code, exitCode, suggestion := Classify(err)
	if fmtErr := f.ErrorWithSuggestion(code, err.Error(), suggestion); fmtErr != nil {
		log.Printf("Error formatting error message: %v", fmtErr)
	}
	os.Exit(exitCode)
}

// FailValidation reports a flag-level validation error and exits.
func FailValidation(f *OutputFormatter, code string, err error, suggestion string) {
	if fmtErr := f.ErrorWithSuggestion(code, err.Error(), suggestion); fmtErr != nil {
		log.Printf("Error formatting error message: %v", fmtErr)
	}
	os.Exit(ExitValidation)
}
