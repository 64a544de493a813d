package presence

// Supersedes decides whether an incoming observation replaces the
// current record. Recency wins outright: a strictly newer observation
// is accepted regardless of source authority, and a strictly older one
// is rejected regardless of source authority. Only an exact timestamp
// collision falls back to the authority ranking, where the more
// authoritative (lower-ranked) source wins deterministically.
func Supersedes(current Record, incoming Observation) bool {
	if incoming.ObservedAt.Before(current.UpdatedAt) {
		return false
	}
	if incoming.ObservedAt.Equal(current.UpdatedAt) {
		return incoming.Source.Rank() < current.Source.Rank()
	}
	return true
}
