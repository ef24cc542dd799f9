package entity

// Stats holds a player's aggregate counters and the rates derived from
// them. Derived fields are recomputed inside the mutation helpers and are
// never assigned anywhere else.
//
// TotalMoves is bumped by one unit per finished game for each participant,
// not per placed mark, so AverageMovesPerWin effectively tracks finished
// games per win.
type Stats struct {
	GamesPlayed int `json:"gamesPlayed"`
	GamesWon    int `json:"gamesWon"`
	GamesLost   int `json:"gamesLost"`
	GamesDrawn  int `json:"gamesDrawn"`
	TotalMoves  int `json:"totalMoves"`

	WinRate            float64 `json:"winRate"`
	AverageMovesPerWin float64 `json:"averageMovesPerWin"`
	Efficiency         float64 `json:"efficiency"`
}

func (that *Stats) IncrementGamesPlayed() {
	that.GamesPlayed++
	that.updateWinRate()
}

func (that *Stats) IncrementGamesWon() {
	that.GamesWon++
	that.updateWinRate()
	that.updateEfficiency()
}

func (that *Stats) IncrementGamesLost() {
	that.GamesLost++
	that.updateWinRate()
}

func (that *Stats) IncrementGamesDrawn() {
	that.GamesDrawn++
	that.updateWinRate()
}

func (that *Stats) AddMoves(moves int) {
	that.TotalMoves += moves
	that.updateAverageMovesPerWin()
	that.updateEfficiency()
}

func (that *Stats) updateWinRate() {
	if that.GamesPlayed > 0 {
		that.WinRate = float64(that.GamesWon) / float64(that.GamesPlayed)
	}
}

func (that *Stats) updateAverageMovesPerWin() {
	if that.GamesWon > 0 {
		that.AverageMovesPerWin = float64(that.TotalMoves) / float64(that.GamesWon)
	}
}

// Efficiency is wins per move unit: GamesWon/TotalMoves, in [0,1] since
// every won game also adds a move unit.
func (that *Stats) updateEfficiency() {
	if that.TotalMoves > 0 {
		that.Efficiency = float64(that.GamesWon) / float64(that.TotalMoves)
	}
}
