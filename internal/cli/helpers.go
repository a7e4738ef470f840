package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// ParseStatus maps a status string to its workflow value
func ParseStatus(s string) (models.Status, error) {
	status := models.Status(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status '%s' (must be: todo, in_progress, review, done, blocked)", s)
	}
	return status, nil
}

// ParsePriority maps a priority string to its value
func ParsePriority(s string) (models.Priority, error) {
	priority := models.Priority(strings.ToLower(s))
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid priority '%s' (must be: low, medium, high, critical)", s)
	}
	return priority, nil
}

// ParseTaskType maps a type string to its value
func ParseTaskType(s string) (models.TaskType, error) {
	taskType := models.TaskType(strings.ToLower(s))
	if !taskType.IsValid() {
		return "", fmt.Errorf("invalid type '%s' (must be: development, testing, documentation, research)", s)
	}
	return taskType, nil
}

// ParseKind maps an entity kind string to its value
func ParseKind(s string) (models.EntityKind, error) {
	kind := models.EntityKind(strings.ToLower(s))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid kind '%s' (must be: project, epic, story, task, bug, sprint)", s)
	}
	return kind, nil
}

// ParseDepType maps a dependency direction string to its value
func ParseDepType(s string) (models.DependencyType, error) {
	depType := models.DependencyType(strings.ToLower(s))
	if !depType.IsValid() {
		return "", fmt.Errorf("invalid dependency type '%s' (must be: blocks, blocked_by)", s)
	}
	return depType, nil
}

// ParseRelType maps a relationship label string to its value
func ParseRelType(s string) (models.RelationshipType, error) {
	relType := models.RelationshipType(strings.ToLower(s))
	if !relType.IsValid() {
		return "", fmt.Errorf("invalid relationship type '%s' (must be: blocks, blocked_by, related_to, cloned_from, depends_on)", s)
	}
	return relType, nil
}

// ParseID parses a positional entity ID argument
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID '%s' (must be a positive integer)", s)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD date flag
func ParseDate(s string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' (must be YYYY-MM-DD)", s)
	}
	return date, nil
}

// ParseLink interprets a clearable reference flag: "none" clears the link,
// a number points it at an entity.
func ParseLink(value string) (models.NullableInt, error) {
	if strings.EqualFold(value, "none") {
		return models.ClearInt(), nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return models.NullableInt{}, fmt.Errorf("invalid reference '%s' (must be a positive ID or 'none')", value)
	}
	return models.SetInt(id), nil
}

// ParsePoints interprets a clearable estimate flag: "none" drops the
// estimate, a non-negative number sets it. Zero is a real estimate,
// distinct from no estimate at all.
func ParsePoints(value string) (models.NullableInt, error) {
	if strings.EqualFold(value, "none") {
		return models.ClearInt(), nil
	}
	points, err := strconv.ParseInt(value, 10, 64)
	if err != nil || points < 0 {
		return models.NullableInt{}, fmt.Errorf("invalid points '%s' (must be a non-negative number or 'none')", value)
	}
	return models.SetInt(points), nil
}

// ReadBody resolves a text flag, honoring the stdin convention: a literal
// "-" reads the whole body from standard input.
func ReadBody(value string) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// StringFlag returns a pointer to the flag value when the user set it, nil
// otherwise. Update requests treat nil as "leave the field alone".
func StringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetString(name)
	return &value
}

// Int64Flag returns a pointer to the flag value when the user set it.
func Int64Flag(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value, _ := cmd.Flags().GetInt64(name)
	return &value
}
