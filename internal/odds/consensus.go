package odds

// Consensus computes the arithmetic mean line and odds across all quotes for
// one market. An empty quote set yields a zero-valued ConsensusLine with
// BookmakerCount 0 rather than an error: "no books" is a state the caller
// checks, not a fault.
func Consensus(quotes []Quote) ConsensusLine {
	if len(quotes) == 0 {
		return ConsensusLine{}
	}

	consensus := ConsensusLine{
		Market:         quotes[0].Market,
		BookmakerCount: len(quotes),
	}

	var lineSum float64
	var lineCount int
	var oddsSum float64

	for _, q := range quotes {
		if q.Line != nil {
			lineSum += *q.Line
			lineCount++
		}
		oddsSum += float64(q.AmericanOdds)
	}

	if lineCount > 0 {
		consensus.Line = lineSum / float64(lineCount)
	}
	consensus.AverageAmericanOdds = oddsSum / float64(len(quotes))

	return consensus
}
