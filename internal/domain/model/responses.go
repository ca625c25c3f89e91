package model

import (
	"fmt"
	"maps"
	"time"
)

// ResponseState is the marking of one test item.
type ResponseState string

const (
	ResponseUnanswered ResponseState = ""
	ResponseCorrect    ResponseState = "correct"
	ResponseIncorrect  ResponseState = "incorrect"
	ResponsePartial    ResponseState = "partial"
)

var responseCycle = []ResponseState{ResponseUnanswered, ResponseCorrect, ResponseIncorrect, ResponsePartial}

// ParseResponseState accepts the four states; "unanswered" is an alias for
// the empty state.
func ParseResponseState(s string) (ResponseState, error) {
	if s == "unanswered" {
		return ResponseUnanswered, nil
	}
	st := ResponseState(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrResponseState, s)
	}
	return st, nil
}

func (s ResponseState) Valid() bool {
	switch s {
	case ResponseUnanswered, ResponseCorrect, ResponseIncorrect, ResponsePartial:
		return true
	}
	return false
}

// Next returns the state a click moves to: unanswered, correct, incorrect,
// partial and back to unanswered.
func (s ResponseState) Next() ResponseState {
	for i, st := range responseCycle {
		if st == s {
			return responseCycle[(i+1)%len(responseCycle)]
		}
	}
	return ResponseUnanswered
}

// Responses holds item markings: test id -> task id -> item number -> state.
// Item numbers start at 1. Unanswered items are absent.
type Responses map[string]map[string]map[int]ResponseState

// Get returns the state of an item; absent items are unanswered.
func (r Responses) Get(testID, taskID string, item int) ResponseState {
	return r[testID][taskID][item]
}

// Count returns how many items of a task hold state.
func (r Responses) Count(testID, taskID string, state ResponseState) int {
	n := 0
	for _, st := range r[testID][taskID] {
		if st == state {
			n++
		}
	}
	return n
}

func (r Responses) clone() Responses {
	if r == nil {
		return nil
	}
	out := make(Responses, len(r))
	for test, tasks := range r {
		m := make(map[string]map[int]ResponseState, len(tasks))
		for task, items := range tasks {
			m[task] = maps.Clone(items)
		}
		out[test] = m
	}
	return out
}

// TaskRef identifies a catalog subtask and how many items it has.
type TaskRef struct {
	TestID    string
	TaskID    string
	ItemCount int
}

// SetResponse marks item (1..ItemCount) of the task. Setting it unanswered
// removes the entry and prunes empty maps.
func (c *Case) SetResponse(ref TaskRef, item int, state ResponseState, now time.Time) error {
	if !state.Valid() {
		return fmt.Errorf("%w: %q", ErrResponseState, state)
	}
	if item < 1 || item > ref.ItemCount {
		return fmt.Errorf("%w: %s/%s item %d of %d", ErrItemRange, ref.TestID, ref.TaskID, item, ref.ItemCount)
	}
	if state == ResponseUnanswered {
		items := c.Responses[ref.TestID][ref.TaskID]
		delete(items, item)
		if len(items) == 0 {
			delete(c.Responses[ref.TestID], ref.TaskID)
		}
		if len(c.Responses[ref.TestID]) == 0 {
			delete(c.Responses, ref.TestID)
		}
		c.ModifiedAt = now
		return nil
	}
	if c.Responses == nil {
		c.Responses = Responses{}
	}
	tasks := c.Responses[ref.TestID]
	if tasks == nil {
		tasks = map[string]map[int]ResponseState{}
		c.Responses[ref.TestID] = tasks
	}
	items := tasks[ref.TaskID]
	if items == nil {
		items = map[int]ResponseState{}
		tasks[ref.TaskID] = items
	}
	items[item] = state
	c.ModifiedAt = now
	return nil
}
