package models

// VoteDelta is the change a single vote applies to a post score.
type VoteDelta int

const (
	VoteUp   VoteDelta = 1
	VoteDown VoteDelta = -1
)

// Valid reports whether d is one of the two accepted deltas.
func (d VoteDelta) Valid() bool {
	return d == VoteUp || d == VoteDown
}
