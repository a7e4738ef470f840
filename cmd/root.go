package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli/audit"
	"github.com/mfigueroa/backlog/internal/cli/bug"
	"github.com/mfigueroa/backlog/internal/cli/dep"
	"github.com/mfigueroa/backlog/internal/cli/epic"
	"github.com/mfigueroa/backlog/internal/cli/note"
	"github.com/mfigueroa/backlog/internal/cli/project"
	"github.com/mfigueroa/backlog/internal/cli/rel"
	"github.com/mfigueroa/backlog/internal/cli/sprint"
	"github.com/mfigueroa/backlog/internal/cli/story"
	"github.com/mfigueroa/backlog/internal/cli/task"
)

var rootCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Backlog - project-scoped work item tracking",
	Long: `Backlog keeps hierarchical work items (epics, stories, tasks, bugs),
their dependencies, and sprint analytics in a local SQLite store. Every
command is scoped to a registered project and attributed to an acting
identity, so cross-project access and edit conflicts land in the audit
log.`,
}

func init() {
	rootCmd.AddCommand(project.Cmd())
	rootCmd.AddCommand(epic.Cmd())
	rootCmd.AddCommand(story.Cmd())
	rootCmd.AddCommand(task.Cmd())
	rootCmd.AddCommand(bug.Cmd())
	rootCmd.AddCommand(dep.Cmd())
	rootCmd.AddCommand(rel.Cmd())
	rootCmd.AddCommand(note.Cmd())
	rootCmd.AddCommand(sprint.Cmd())
	rootCmd.AddCommand(audit.Cmd())
}

func Execute() error {
	return rootCmd.Execute()
}
