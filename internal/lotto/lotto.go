// Package lotto generates lucky-number tickets.
package lotto

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Games.
const (
	GamePowerBall  = "powerball"
	GameDailyLotto = "daily-lotto"
)

// TicketPrice is the advertised price of one generated ticket.
var TicketPrice = decimal.NewFromInt(30)

// ErrUnknownGame is returned for unsupported games.
var ErrUnknownGame = errors.New("lotto: unknown game")

type gameRules struct {
	boards    int
	picks     int
	maxNumber int
	maxBonus  int // Zero when the game has no bonus ball.
}

var games = map[string]gameRules{
	GamePowerBall:  {boards: 6, picks: 5, maxNumber: 50, maxBonus: 20},
	GameDailyLotto: {boards: 10, picks: 5, maxNumber: 36},
}

// Board is one line of numbers.
type Board struct {
	Numbers   []int `json:"numbers"`
	PowerBall int   `json:"powerball,omitempty"`
}

// Ticket is a generated set of boards.
type Ticket struct {
	Game   string          `json:"game"`
	Price  decimal.Decimal `json:"price"`
	Boards []Board         `json:"boards"`
}

// Generator draws tickets from a random source. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator. A nil rng uses a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Generate draws a ticket for game.
func (g *Generator) Generate(game string) (Ticket, error) {
	key := strings.ToLower(strings.TrimSpace(game))
	rules, ok := games[key]
	if !ok {
		return Ticket{}, ErrUnknownGame
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	ticket := Ticket{Game: key, Price: TicketPrice, Boards: make([]Board, 0, rules.boards)}
	for range rules.boards {
		board := Board{Numbers: g.pick(rules.picks, rules.maxNumber)}
		if rules.maxBonus > 0 {
			board.PowerBall = g.rng.IntN(rules.maxBonus) + 1
		}
		ticket.Boards = append(ticket.Boards, board)
	}
	return ticket, nil
}

// pick draws n distinct numbers from 1..max in ascending order.
func (g *Generator) pick(n, max int) []int {
	pool := g.rng.Perm(max)[:n]
	numbers := make([]int, n)
	for i, v := range pool {
		numbers[i] = v + 1
	}
	slices.Sort(numbers)
	return numbers
}
