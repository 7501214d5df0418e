package domain

import dErrors "proofguard/pkg/domain-errors"

// SecurityLevel ranks content sensitivity. Levels form a small total order;
// access requires a clearance at least as high as the content's level.
type SecurityLevel string

const (
	LevelPublic             SecurityLevel = "public"
	LevelInternal           SecurityLevel = "internal"
	LevelConfidential       SecurityLevel = "confidential"
	LevelRestricted         SecurityLevel = "restricted"
	LevelHighlyConfidential SecurityLevel = "highly_confidential"
)

// levelOrder defines the ordering of levels for comparison.
// Higher numbers represent more sensitive content.
var levelOrder = map[SecurityLevel]int{
	LevelPublic:             0,
	LevelInternal:           1,
	LevelConfidential:       2,
	LevelRestricted:         3,
	LevelHighlyConfidential: 4,
}

// ParseSecurityLevel validates and returns a SecurityLevel.
// Returns an error if the level name is unknown.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	l := SecurityLevel(s)
	if _, ok := levelOrder[l]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown security level: "+s)
	}
	return l, nil
}

// Rank returns the numeric rank of the level. Unknown levels rank below
// public so they never satisfy a clearance check.
func (l SecurityLevel) Rank() int {
	if r, ok := levelOrder[l]; ok {
		return r
	}
	return -1
}

// AtLeast returns true if this level is >= other in the sensitivity order.
func (l SecurityLevel) AtLeast(other SecurityLevel) bool {
	return l.Rank() >= other.Rank()
}

// IsValid checks whether the level is one of the defined ranks.
func (l SecurityLevel) IsValid() bool {
	_, ok := levelOrder[l]
	return ok
}

func (l SecurityLevel) String() string { return string(l) }
