package lotto

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestGenerateRules(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewPCG(1, 2)))
	cases := []struct {
		game      string
		boards    int
		maxNumber int
		bonus     bool
	}{
		{GamePowerBall, 6, 50, true},
		{"DAILY-LOTTO", 10, 36, false},
	}
	for _, tc := range cases {
		for round := 0; round < 50; round++ {
			ticket, errGen := gen.Generate(tc.game)
			if errGen != nil {
				t.Fatalf("generate %s: %v", tc.game, errGen)
			}
			if len(ticket.Boards) != tc.boards || !ticket.Price.Equal(TicketPrice) {
				t.Fatalf("%s: boards=%d price=%s", tc.game, len(ticket.Boards), ticket.Price)
			}
			for _, board := range ticket.Boards {
				if len(board.Numbers) != 5 || !slices.IsSorted(board.Numbers) {
					t.Fatalf("%s: unexpected numbers %v", tc.game, board.Numbers)
				}
				if len(slices.Compact(slices.Clone(board.Numbers))) != 5 {
					t.Fatalf("%s: duplicate numbers %v", tc.game, board.Numbers)
				}
				if board.Numbers[0] < 1 || board.Numbers[4] > tc.maxNumber {
					t.Fatalf("%s: numbers out of range %v", tc.game, board.Numbers)
				}
				if tc.bonus && (board.PowerBall < 1 || board.PowerBall > 20) {
					t.Fatalf("powerball out of range: %d", board.PowerBall)
				}
				if !tc.bonus && board.PowerBall != 0 {
					t.Fatalf("unexpected bonus ball: %d", board.PowerBall)
				}
			}
		}
	}
}

func TestGenerateUnknownGame(t *testing.T) {
	if _, errGen := NewGenerator(nil).Generate("keno"); !errors.Is(errGen, ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame, got %v", errGen)
	}
}
