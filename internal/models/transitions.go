package models

// workItemTransitions is the allow-list of legal status changes. Epics,
// stories, tasks, and bugs all share the same workflow today; the lookup is
// still keyed by entity kind so a kind can diverge later without touching
// call sites.
var workItemTransitions = map[Status][]Status{
	StatusTodo:       {StatusInProgress, StatusBlocked},
	StatusInProgress: {StatusReview, StatusDone, StatusBlocked, StatusTodo},
	StatusReview:     {StatusDone, StatusInProgress, StatusBlocked},
	StatusBlocked:    {StatusTodo, StatusInProgress},
	StatusDone:       {StatusTodo}, // reopen
}

// CanTransition reports whether a status change is on the allow-list for the
// given entity kind. A no-op change (from == to) is always allowed.
func CanTransition(kind EntityKind, from, to Status) bool {
	switch kind {
	case KindEpic, KindStory, KindTask, KindBug:
	default:
		return false
	}
	if from == to {
		return true
	}
	for _, next := range workItemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
