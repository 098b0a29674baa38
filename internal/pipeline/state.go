package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// State is a stage of a run: unbuilt, assembled, pass_<i>, finalized or
// failed.
type State string

const (
	StateUnbuilt   State = "unbuilt"
	StateAssembled State = "assembled"
	StateFinalized State = "finalized"
	StateFailed    State = "failed"
)

const passPrefix = "pass_"

// StatePass is the state while the pass at index i runs.
func StatePass(i int) State {
	return State(fmt.Sprintf("%s%d", passPrefix, i))
}

// PassIndex returns the pass index of a pass state.
func (s State) PassIndex() (int, bool) {
	rest, ok := strings.CutPrefix(string(s), passPrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	return i, err == nil
}

// Terminal reports whether no further transition follows.
func (s State) Terminal() bool {
	return s == StateFinalized || s == StateFailed
}
