package session

import (
	"fmt"
	"time"
)

// Rule names accepted by RuleByName.
const (
	RuleContainment  = "containment"
	RuleIntersection = "intersection"
)

// Rule decides whether candidate conflicts with an already scheduled session.
type Rule func(candidate, existing Session) bool

// EndpointContainment declares a conflict when either endpoint of candidate
// falls inside [existing.StartAt, existing.EndAt], bounds inclusive.
//
// A candidate that strictly surrounds existing (starts before and ends
// after it) is NOT reported. Use Intersection to catch that case.
func EndpointContainment(candidate, existing Session) bool {
	return within(candidate.StartAt, existing) || within(candidate.EndAt, existing)
}

// Intersection declares a conflict when the two date ranges share any day.
func Intersection(candidate, existing Session) bool {
	return !Day(candidate.StartAt).After(Day(existing.EndAt)) &&
		!Day(existing.StartAt).After(Day(candidate.EndAt))
}

// RuleByName resolves a configured rule name. Empty selects containment.
func RuleByName(name string) (Rule, error) {
	switch name {
	case "", RuleContainment:
		return EndpointContainment, nil
	case RuleIntersection:
		return Intersection, nil
	default:
		return nil, fmt.Errorf("unknown overlap rule %q", name)
	}
}

func within(date time.Time, s Session) bool {
	d := Day(date)
	return !d.Before(Day(s.StartAt)) && !d.After(Day(s.EndAt))
}
