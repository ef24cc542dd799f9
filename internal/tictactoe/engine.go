package tictactoe

const (
	SymbolX = "X"
	SymbolO = "O"

	EmptyCell = ""

	BoardSize = 9
)

// Board is a row-major 3x3 grid. Index layout:
//
//	0 1 2
//	3 4 5
//	6 7 8
type Board [BoardSize]string

// Lines are the 8 winning combinations: 3 rows, 3 columns, 2 diagonals.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// IsWin reports whether any line is fully occupied by symbol.
func IsWin(board Board, symbol string) bool {
	for _, line := range Lines {
		if board[line[0]] == symbol && board[line[1]] == symbol && board[line[2]] == symbol {
			return true
		}
	}

	return false
}

// IsDraw reports whether every cell is occupied. The caller must check for
// a win first; a full board with a winning line is not a draw.
func IsDraw(board Board) bool {
	for _, cell := range board {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// IsLegalMove reports whether position is in range and the cell is empty.
func IsLegalMove(board Board, position int) bool {
	return position >= 0 && position < BoardSize && board[position] == EmptyCell
}

// ToggleSymbol returns the opposing mark.
func ToggleSymbol(symbol string) string {
	if symbol == SymbolX {
		return SymbolO
	}

	return SymbolX
}
