package finder

// Class is the verdict for an evaluated candidate.
type Class int

const (
	ClassRejected Class = iota
	ClassPrimaryKey
	ClassPseudoKey
)

func (c Class) String() string {
	switch c {
	case ClassPrimaryKey:
		return "primary_key"
	case ClassPseudoKey:
		return "pseudo_key"
	default:
		return "rejected"
	}
}

// Classify decides whether distinct fingerprints out of rows make a
// primary key, a pseudo-key at precision p (inclusive), or nothing.
// A ratio of 1 is always a primary key, never a pseudo-key.
func Classify(distinct, rows int, p float64) Class {
	if distinct == rows {
		return ClassPrimaryKey
	}
	if Ratio(distinct, rows) >= p {
		return ClassPseudoKey
	}
	return ClassRejected
}

// Ratio returns distinct/rows, or 1 for an empty table.
func Ratio(distinct, rows int) float64 {
	if rows == 0 {
		return 1
	}
	return float64(distinct) / float64(rows)
}
