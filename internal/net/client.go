package net

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Client drives a remote environment session.
type Client struct {
	conn    *websocket.Conn
	session string
}

// Dial connects to a server's websocket endpoint, e.g. ws://host:9000/ws,
// and waits for the session to be ready.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	conn.SetReadLimit(1 << 22)
	var ready ServerMessage
	if err := wsjson.Read(ctx, conn, &ready); err != nil {
		conn.CloseNow()
		return nil, fmt.Errorf("read ready: %w", err)
	}
	if ready.Type != TypeReady {
		conn.CloseNow()
		return nil, fmt.Errorf("expected ready, got %q: %s", ready.Type, ready.Error)
	}
	return &Client{conn: conn, session: ready.Session}, nil
}

// Session returns the server-assigned session id.
func (c *Client) Session() string { return c.session }

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

func (c *Client) roundTrip(ctx context.Context, msg ClientMessage) (ServerMessage, error) {
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return ServerMessage{}, fmt.Errorf("send %s: %w", msg.Type, err)
	}
	var reply ServerMessage
	if err := wsjson.Read(ctx, c.conn, &reply); err != nil {
		return ServerMessage{}, fmt.Errorf("read %s reply: %w", msg.Type, err)
	}
	if reply.Type == TypeError {
		return reply, errors.New(reply.Error)
	}
	return reply, nil
}

// Reset starts a new episode.
func (c *Client) Reset(ctx context.Context, tensors bool) (ServerMessage, error) {
	return c.roundTrip(ctx, ClientMessage{Type: TypeReset, Tensors: tensors})
}

// Step answers the pending decision with option index.
func (c *Client) Step(ctx context.Context, index int, tensors bool) (ServerMessage, error) {
	return c.roundTrip(ctx, ClientMessage{Type: TypeStep, Index: index, Tensors: tensors})
}

// Observe re-describes the current state without acting.
func (c *Client) Observe(ctx context.Context, tensors bool) (ServerMessage, error) {
	return c.roundTrip(ctx, ClientMessage{Type: TypeObserve, Tensors: tensors})
}

// RunREPL plays one episode from a terminal: it renders each result and
// reads the next option from in.
func (c *Client) RunREPL(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	msg, err := c.Reset(ctx, false)
	if err != nil {
		return err
	}
	for {
		for _, ev := range msg.Events {
			renderEvent(out, ev)
		}
		if msg.Done {
			fmt.Fprintln(out)
			fmt.Fprintln(out, "═══════════════════════════════════")
			fmt.Fprintln(out, "          GAME OVER")
			fmt.Fprintln(out, "═══════════════════════════════════")
			fmt.Fprintln(out, msg.Result)
			fmt.Fprintln(out, "═══════════════════════════════════")
			return nil
		}
		renderState(out, msg.State)
		renderActions(out, msg.Actions)
		idx, err := readChoice(reader, out, msg.Actions)
		if err != nil {
			return err
		}
		if msg, err = c.Step(ctx, idx, false); err != nil {
			return err
		}
	}
}

func renderEvent(out io.Writer, ev EventView) {
	// Format like the TextLogger
	phase := ev.Phase
	if phase == "" {
		phase = "          "
	}
	for len(phase) < 16 {
		phase += " "
	}
	fmt.Fprintf(out, "T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func renderState(out io.Writer, sv *StateView) {
	if sv == nil {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔══════════════════════════════════════════════════════╗")

	opp := sv.Opponent
	fmt.Fprintf(out, "║  OPPONENT (LP: %d)  Hand: %d  Deck: %d  Grave: %d  Banished: %d  Extra: %d\n",
		opp.LP, opp.HandCount, opp.DeckCount, opp.GraveCount, opp.RemovedCount, opp.ExtraCount)
	fmt.Fprintf(out, "║  S/T:      %s\n", formatRow(opp.SpellTraps[:], formatSpellZone, false))
	fmt.Fprintf(out, "║  Monsters: %s\n", formatRow(opp.Monsters[:], formatMonsterZone, false))

	fmt.Fprintln(out, "║──────────────────────────────────────────────────────")

	you := sv.You
	fmt.Fprintf(out, "║  Monsters: %s\n", formatRow(you.Monsters[:], formatMonsterZone, true))
	fmt.Fprintf(out, "║  S/T:      %s\n", formatRow(you.SpellTraps[:], formatSpellZone, true))
	fmt.Fprintf(out, "║  YOU (LP: %d)  Hand: %d  Deck: %d  Grave: %d  Banished: %d  Extra: %d\n",
		you.LP, you.HandCount, you.DeckCount, you.GraveCount, you.RemovedCount, you.ExtraCount)
	fmt.Fprintln(out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += " | Your turn"
	} else {
		turnInfo += " | Opponent's turn"
	}
	fmt.Fprintln(out, turnInfo)

	if len(you.Hand) > 0 {
		fmt.Fprintf(out, "\nHand: ")
		for i, name := range you.Hand {
			fmt.Fprintf(out, "[h%d] %s  ", i+1, name)
		}
		fmt.Fprintln(out)
	}
}

func formatRow(zones []ZoneView, format func(ZoneView, bool) string, isOwner bool) string {
	parts := make([]string, len(zones))
	for i, zv := range zones {
		parts[i] = format(zv, isOwner)
	}
	return strings.Join(parts, " ")
}

func formatMonsterZone(zv ZoneView, isOwner bool) string {
	if zv.Empty {
		return "[ ]"
	}
	if zv.FaceDown {
		if isOwner {
			return fmt.Sprintf("[SET:%s]", zv.Name)
		}
		return "[SET]"
	}
	s := fmt.Sprintf("[%s %d/%d]", zv.Name, zv.ATK, zv.DEF)
	if zv.Materials > 0 {
		s += fmt.Sprintf("+%d", zv.Materials)
	}
	return s
}

func formatSpellZone(zv ZoneView, isOwner bool) string {
	if zv.Empty {
		return "[ ]"
	}
	if zv.FaceDown {
		if isOwner {
			return fmt.Sprintf("[SET:%s]", zv.Name)
		}
		return "[SET]"
	}
	return fmt.Sprintf("[%s]", zv.Name)
}

func renderActions(out io.Writer, actions []ActionView) {
	fmt.Fprintln(out, "\nOptions:")
	for _, a := range actions {
		fmt.Fprintf(out, "  %d) %s\n", a.Index+1, a.Option)
	}
}

// readChoice accepts either an option string or its 1-based number.
func readChoice(reader *bufio.Reader, out io.Writer, actions []ActionView) (int, error) {
	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if i := slices.IndexFunc(actions, func(a ActionView) bool { return a.Option == line }); i >= 0 {
			return actions[i].Index, nil
		}
		if n, convErr := strconv.Atoi(line); convErr == nil && n >= 1 && n <= len(actions) {
			return n - 1, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read choice: %w", err)
		}
		fmt.Fprintf(out, "Enter an option or a number between 1 and %d\n", len(actions))
	}
}
