package prompt

import "strings"

// Action identifies the kind of assistance requested for a snippet of code
type Action string

const (
	ActionExplain  Action = "explain"
	ActionOptimize Action = "optimize"
	ActionComment  Action = "comment"
	ActionDebug    Action = "debug"
	ActionConvert  Action = "convert"
	ActionGenerate Action = "generate"
	ActionReview   Action = "review"
)

var allActions = []Action{
	ActionExplain,
	ActionOptimize,
	ActionComment,
	ActionDebug,
	ActionConvert,
	ActionGenerate,
	ActionReview,
}

// Actions returns the closed set of supported actions in display order
func Actions() []Action {
	out := make([]Action, len(allActions))
	copy(out, allActions)
	return out
}

// ActionNames returns the supported actions as plain strings
func ActionNames() []string {
	names := make([]string, len(allActions))
	for i, a := range allActions {
		names[i] = string(a)
	}
	return names
}

// Valid reports whether a is one of the supported actions
func (a Action) Valid() bool {
	switch a {
	case ActionExplain, ActionOptimize, ActionComment, ActionDebug,
		ActionConvert, ActionGenerate, ActionReview:
		return true
	default:
		return false
	}
}

// ParseAction converts user input into an Action
func ParseAction(s string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	return a, a.Valid()
}

// RequestContext carries everything needed to build prompts for one call.
// It is passed by value and never modified after construction.
type RequestContext struct {
	Action         Action
	Code           string
	Language       string
	Output         string
	TargetLanguage string
	CustomPrompt   string
}
