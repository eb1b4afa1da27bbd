package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/bjtrainer/internal/game"
)

// True count buckets run from MinTrueCount to MaxTrueCount; counts outside
// the range are folded into the end buckets.
const (
	MinTrueCount = -4
	MaxTrueCount = 6
)

// RoundResult is the outcome of a single simulated round
type RoundResult struct {
	NetUnits  float64 // Net result in initial-bet units
	Seed      int64   // Session seed, for replay
	TrueCount int     // True count when the round was dealt, rounded
	Outcomes  []game.Outcome
	Doubled   bool
	Split     bool
}

// BucketStats tracks results dealt at one true count
type BucketStats struct {
	Rounds     int
	SumUnits   float64
	SumUnitsSq float64
}

// Statistics tracks simulation results
type Statistics struct {
	Rounds     int
	SumUnits   float64
	SumUnitsSq float64   // Sum of squares for variance calculation
	Values     []float64 // Store all values for median/percentile calculation

	Hands    int // Player hands settled, including split hands
	Wins     int
	Losses   int
	Pushes   int
	Naturals int
	Busts    int
	Doubles  int
	Splits   int

	CountResults [MaxTrueCount - MinTrueCount + 1]BucketStats
}

// BucketIndex maps a true count to its CountResults index
func BucketIndex(trueCount int) int {
	return min(max(trueCount, MinTrueCount), MaxTrueCount) - MinTrueCount
}

// Mean returns the arithmetic mean in units per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumUnits / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumUnitsSq - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a round result
func (s *Statistics) Add(result RoundResult) {
	net := result.NetUnits
	s.Rounds++
	s.SumUnits += net
	s.SumUnitsSq += net * net
	s.Values = append(s.Values, net)

	for _, o := range result.Outcomes {
		s.Hands++
		switch o {
		case game.Win:
			s.Wins++
		case game.Natural:
			s.Naturals++
		case game.Push:
			s.Pushes++
		case game.Bust:
			s.Busts++
		default:
			s.Losses++
		}
	}
	if result.Doubled {
		s.Doubles++
	}
	if result.Split {
		s.Splits++
	}

	b := &s.CountResults[BucketIndex(result.TrueCount)]
	b.Rounds++
	b.SumUnits += net
	b.SumUnitsSq += net * net
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumUnits += other.SumUnits
	s.SumUnitsSq += other.SumUnitsSq
	s.Values = append(s.Values, other.Values...)
	s.Hands += other.Hands
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Naturals += other.Naturals
	s.Busts += other.Busts
	s.Doubles += other.Doubles
	s.Splits += other.Splits
	for i := range s.CountResults {
		s.CountResults[i].Rounds += other.CountResults[i].Rounds
		s.CountResults[i].SumUnits += other.CountResults[i].SumUnits
		s.CountResults[i].SumUnitsSq += other.CountResults[i].SumUnitsSq
	}
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// CountMean returns the mean result for rounds dealt at trueCount
func (s *Statistics) CountMean(trueCount int) float64 {
	b := s.CountResults[BucketIndex(trueCount)]
	if b.Rounds == 0 {
		return 0
	}
	return b.SumUnits / float64(b.Rounds)
}

// WinRate returns the share of hands won, naturals included
func (s *Statistics) WinRate() float64 {
	if s.Hands == 0 {
		return 0
	}
	return float64(s.Wins+s.Naturals) / float64(s.Hands)
}

// IsLedgerBalanced checks the per-count buckets add up to the total
func (s *Statistics) IsLedgerBalanced() bool {
	var sum float64
	for _, b := range s.CountResults {
		sum += b.SumUnits
	}
	return math.Abs(sum-s.SumUnits) <= 1e-6
}

// Validate performs consistency checks on the collected data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("statistics: ledger mismatch: total %.6f units", s.SumUnits)
	}

	if s.Rounds <= 0 {
		return fmt.Errorf("statistics: invalid round count: %d", s.Rounds)
	}

	if len(s.Values) != s.Rounds {
		return fmt.Errorf("statistics: values length (%d) does not match round count (%d)",
			len(s.Values), s.Rounds)
	}

	if s.Hands < s.Rounds {
		return fmt.Errorf("statistics: hands (%d) fewer than rounds (%d)", s.Hands, s.Rounds)
	}

	outcomes := s.Wins + s.Losses + s.Pushes + s.Naturals + s.Busts
	if outcomes != s.Hands {
		return fmt.Errorf("statistics: outcome total (%d) does not match hands (%d)", outcomes, s.Hands)
	}

	bucketRounds := 0
	for _, b := range s.CountResults {
		bucketRounds += b.Rounds
	}
	if bucketRounds != s.Rounds {
		return fmt.Errorf("statistics: true count rounds (%d) do not match round count (%d)",
			bucketRounds, s.Rounds)
	}

	return nil
}
