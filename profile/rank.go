package profile

import "math"

type Rank struct {
	Title     string
	MinProfit float64
	// Next is the profit needed for the following rank, 0 at the top.
	Next float64
}

var ranks = []Rank{
	{Title: "Intern", MinProfit: 0, Next: 1000},
	{Title: "Retail Trader", MinProfit: 1000, Next: 5000},
	{Title: "Day Trader", MinProfit: 5000, Next: 20000},
	{Title: "Analyst", MinProfit: 20000, Next: 100000},
	{Title: "Fund Manager", MinProfit: 100000, Next: 500000},
	{Title: "Market Maker", MinProfit: 500000, Next: 1000000},
	{Title: "Wolf of Wall St", MinProfit: 1000000},
}

// RankFor maps career profit to a rank. Losses still rank as Intern.
func RankFor(careerProfit float64) Rank {
	p := math.Max(0, careerProfit)
	for i := len(ranks) - 1; i >= 0; i-- {
		if p >= ranks[i].MinProfit {
			return ranks[i]
		}
	}
	return ranks[0]
}

func (r Rank) Top() bool { return r.Next == 0 }

// Progress is how far careerProfit has moved from this rank toward the next,
// in [0, 1]. The top rank is always complete.
func (r Rank) Progress(careerProfit float64) float64 {
	if r.Top() {
		return 1
	}
	f := (careerProfit - r.MinProfit) / (r.Next - r.MinProfit)
	return math.Min(1, math.Max(0, f))
}
