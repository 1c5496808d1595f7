package flow

// DefaultAction is the reserved edge key followed when a node's aggregate
// step returns NoAction, or an action with no edge of its own.
const DefaultAction = "default"

// Action is the routing decision returned by a node's aggregate step.
//
// An Action takes one of three forms:
//   - Named: Act("search") routes via the "search" edge, falling back to the default edge
//   - NoAction: the zero value, routes via the default edge
//   - Stop: the terminal sentinel, ends the traversal regardless of edges
//
// Stop is a flag rather than a reserved name, so no string passed to Act
// can ever be mistaken for it.
type Action struct {
	name string
	stop bool
}

var (
	// NoAction routes via the default edge.
	NoAction = Action{}

	// Stop ends the traversal successfully.
	Stop = Action{stop: true}
)

// Act returns a named action. Act("") is equivalent to NoAction.
func Act(name string) Action {
	return Action{name: name}
}

// Name returns the action's edge key, or "" for NoAction and Stop.
func (a Action) Name() string {
	return a.name
}

// IsStop reports whether a is the terminal sentinel.
func (a Action) IsStop() bool {
	return a.stop
}

// IsZero reports whether a is NoAction.
func (a Action) IsZero() bool {
	return !a.stop && a.name == ""
}

func (a Action) String() string {
	switch {
	case a.stop:
		return "<stop>"
	case a.name == "":
		return "<none>"
	default:
		return a.name
	}
}
