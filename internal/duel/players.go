package duel

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
)

// Player decides for a seat that the agent does not control.
type Player interface {
	Choose(ctx context.Context, d *PendingDecision) (int, error)
}

// GreedyBot always takes the first option.
type GreedyBot struct{}

func (GreedyBot) Choose(context.Context, *PendingDecision) (int, error) { return 0, nil }

// RandomBot picks uniformly among the options.
type RandomBot struct {
	rng *rand.Rand
}

func NewRandomBot(rng *rand.Rand) *RandomBot {
	return &RandomBot{rng: rng}
}

func (b *RandomBot) Choose(_ context.Context, d *PendingDecision) (int, error) {
	return b.rng.IntN(len(d.Options)), nil
}

// HumanPlayer reads option strings line by line until one matches.
type HumanPlayer struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewHumanPlayer(in io.Reader, out io.Writer) *HumanPlayer {
	return &HumanPlayer{in: bufio.NewScanner(in), out: out}
}

func (p *HumanPlayer) Choose(ctx context.Context, d *PendingDecision) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, fmt.Errorf("read choice: %w", err)
			}
			return 0, fmt.Errorf("read choice: %w", io.EOF)
		}
		input := strings.TrimSpace(p.in.Text())
		if input == "quit" {
			return 0, ErrQuit
		}
		if i := slices.Index(d.Options, input); i >= 0 {
			return i, nil
		}
		fmt.Fprintf(p.out, "Choose from %s\n", strings.Join(d.Options, ", "))
	}
}
