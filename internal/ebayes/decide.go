package ebayes

// DefaultAlpha is the adjusted p-value threshold used when none is
// configured.
const DefaultAlpha = 0.05

// Call is the per-gene significance call for one contrast.
type Call int8

const (
	CallDown   Call = -1
	CallNotSig Call = 0
	CallUp     Call = 1
)

func (c Call) String() string {
	switch c {
	case CallUp:
		return "up"
	case CallDown:
		return "down"
	default:
		return "ns"
	}
}

// Decide fills in adjusted p-values (Benjamini-Hochberg) and per-gene calls
// at the given adjusted-p threshold: up for positive fold change, down for
// negative, not-significant otherwise or at zero fold change.
func (s *Stats) Decide(alpha float64) {
	s.AdjP = AdjustBH(s.P)
	s.Calls = make([]Call, len(s.P))
	for g, ap := range s.AdjP {
		if ap >= alpha {
			continue
		}
		switch {
		case s.LogFC[g] > 0:
			s.Calls[g] = CallUp
		case s.LogFC[g] < 0:
			s.Calls[g] = CallDown
		}
	}
}

// CallCounts tallies the calls. The three counts sum to the gene count.
func (s *Stats) CallCounts() (up, down, notSig int) {
	for _, c := range s.Calls {
		switch c {
		case CallUp:
			up++
		case CallDown:
			down++
		default:
			notSig++
		}
	}
	return up, down, notSig
}
