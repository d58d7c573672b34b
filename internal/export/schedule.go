package export

// Steps is an ordered list of target steps. Duplicates are allowed and fire
// once per entry. Hosts run hooks after advancing, so the first step a hook
// sees is 1 and a target of 0 is accepted but never matched.
type Steps []int

// Matches returns how many entries equal step.
func (s Steps) Matches(step int) int {
	n := 0
	for _, ts := range s {
		if ts == step {
			n++
		}
	}
	return n
}

// Validate rejects a missing or empty list and negative steps.
func (s Steps) Validate() error {
	if len(s) == 0 {
		return Invalidf("time-steps are not defined")
	}
	for _, ts := range s {
		if ts < 0 {
			return Invalidf("time-step %d is negative", ts)
		}
	}
	return nil
}

// Last returns the largest step, or -1 for an empty list.
func (s Steps) Last() int {
	last := -1
	for _, ts := range s {
		if ts > last {
			last = ts
		}
	}
	return last
}

// Range selects every step in [Start, End] that is a multiple of Interval.
// As with Steps, step 0 is never seen by a hook.
type Range struct {
	Start    int
	End      int
	Interval int
}

// Contains reports whether step is selected.
func (r Range) Contains(step int) bool {
	return step >= r.Start && step <= r.End && step%r.Interval == 0
}

// Validate checks the bounds and the interval.
func (r Range) Validate() error {
	if r.Start < 0 {
		return Invalidf("start time-step %d is negative", r.Start)
	}
	if r.End < r.Start {
		return Invalidf("end time-step %d is before start time-step %d", r.End, r.Start)
	}
	if r.Interval <= 0 {
		return Invalidf("time-step interval must be positive, got %d", r.Interval)
	}
	return nil
}
