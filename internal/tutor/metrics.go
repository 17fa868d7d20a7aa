package tutor

import "sort"

// Metrics are the session-wide counters the adaptive policy reads.
type Metrics struct {
	AttemptsTotal     int
	CorrectOnFirstTry int
	HintsRequested    int

	// ConceptsMastered is sorted and free of duplicates.
	ConceptsMastered []string
}

// SuccessRate is CorrectOnFirstTry / AttemptsTotal, or 0 with no attempts.
func (m Metrics) SuccessRate() float64 {
	if m.AttemptsTotal == 0 {
		return 0
	}
	return float64(m.CorrectOnFirstTry) / float64(m.AttemptsTotal)
}

// HintsPerAttempt is HintsRequested / AttemptsTotal, or 0 with no attempts.
func (m Metrics) HintsPerAttempt() float64 {
	if m.AttemptsTotal == 0 {
		return 0
	}
	return float64(m.HintsRequested) / float64(m.AttemptsTotal)
}

func (m Metrics) clone() Metrics {
	c := m
	c.ConceptsMastered = append([]string(nil), m.ConceptsMastered...)
	return c
}

func (m *Metrics) master(concept string) {
	i := sort.SearchStrings(m.ConceptsMastered, concept)
	if i < len(m.ConceptsMastered) && m.ConceptsMastered[i] == concept {
		return
	}
	m.ConceptsMastered = append(m.ConceptsMastered, "")
	copy(m.ConceptsMastered[i+1:], m.ConceptsMastered[i:])
	m.ConceptsMastered[i] = concept
}
