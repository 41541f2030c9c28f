package terminal

import (
	"context"
	"fmt"
	"unicode"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/bomber-grid-game/game/engine"
)

const helpLine = "WASD/QEZC or arrows move  X plant  F/space detonate  R reset  Esc quit"

var (
	styleDefault = tcell.StyleDefault
	styleLabel   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleVillain = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleBrick   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleKey     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDevice  = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	stylePower   = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleWon     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true)
	styleDied    = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
)

// Game drives a local engine from keyboard input and draws it on a tcell
// screen. It is used from a single goroutine.
type Game struct {
	screen  tcell.Screen
	engine  *engine.GameEngine
	message string
}

// NewGame wraps an initialized screen and an engine
func NewGame(screen tcell.Screen, e *engine.GameEngine) *Game {
	return &Game{
		screen:  screen,
		engine:  e,
		message: e.GetState().Message,
	}
}

// Play opens the terminal, runs the level until the player quits or ctx is
// cancelled, and restores the terminal.
func Play(ctx context.Context, config *engine.GameConfig) error {
	e, err := engine.NewEngine(config)
	if err != nil {
		return fmt.Errorf("failed to start level %q: %w", config.Name, err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	return NewGame(screen, e).Run(ctx)
}

// Run polls screen events until Esc/Ctrl-C or ctx is done
func (g *Game) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				// screen finalized
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	g.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !g.HandleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				g.screen.Sync()
			}
			g.Draw()
		}
	}
}

// keyCommands maps non-rune keys to commands
var keyCommands = map[tcell.Key]engine.Command{
	tcell.KeyUp:    engine.Move(engine.Up),
	tcell.KeyDown:  engine.Move(engine.Down),
	tcell.KeyLeft:  engine.Move(engine.Left),
	tcell.KeyRight: engine.Move(engine.Right),
	tcell.KeyEnter: engine.Detonate(),
}

// runeMoves maps the letter keys shown in the help line to moves
var runeMoves = map[rune]engine.Direction{
	'w': engine.Up, 'a': engine.Left, 's': engine.Down, 'd': engine.Right,
	'q': engine.UpLeft, 'e': engine.UpRight, 'z': engine.DownLeft, 'c': engine.DownRight,
}

// HandleKey applies the command bound to a key. It returns false when the
// player asked to quit.
func (g *Game) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case 'r', 'R':
			if _, err := g.engine.Reset(); err != nil {
				g.message = err.Error()
			} else {
				g.message = "Level reset"
			}
			return true
		case 'x', 'X':
			g.apply(engine.Plant())
			return true
		case 'f', 'F', ' ':
			g.apply(engine.Detonate())
			return true
		default:
			if d, ok := runeMoves[unicode.ToLower(r)]; ok {
				g.apply(engine.Move(d))
			}
			return true
		}
	}

	if cmd, ok := keyCommands[ev.Key()]; ok {
		g.apply(cmd)
	}
	return true
}

func (g *Game) apply(cmd engine.Command) {
	out := g.engine.Apply(cmd)
	g.message = out.Message
	log.WithFields(log.Fields{
		"cmd":    cmd.String(),
		"status": out.Status,
	}).Debug("[TUI] command")
}

// Draw renders the grid, the player's attributes and the last message
func (g *Game) Draw() {
	g.screen.Clear()
	state := g.engine.GetState()

	for r, row := range state.Grid {
		for c, cell := range row {
			ch, style := cellRune(r, c, cell)
			g.screen.SetContent(c*2, r, ch, nil, style)
		}
	}

	y := len(state.Grid) + 1
	p := state.Player
	diagonal := "no"
	if p.DiagonalBlast {
		diagonal = "yes"
	}
	g.drawText(0, y, styleDefault, fmt.Sprintf("%s  Range: %d  Bombs: %d/%d  Diagonal: %s",
		p.Pos.Label(), p.BombRange, len(state.Devices), p.DeviceCapacity, diagonal))

	switch state.Status {
	case engine.StatusPlayerWon:
		g.drawText(0, y+1, styleWon, g.message+"  (R to play again)")
	case engine.StatusPlayerDied:
		g.drawText(0, y+1, styleDied, g.message+"  (R to try again)")
	default:
		g.drawText(0, y+1, styleDefault, g.message)
	}
	g.drawText(0, y+3, styleLabel, helpLine)

	g.screen.Show()
}

func (g *Game) drawText(x, y int, style tcell.Style, text string) {
	for _, ch := range text {
		g.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}

// cellRune returns the glyph and style for grid cell (r, c)
func cellRune(r, c int, cell engine.Cell) (rune, tcell.Style) {
	switch {
	case r == 0 && c == 0:
		return ' ', styleLabel
	case r == 0:
		return rune('A' + c - 1), styleLabel
	case c == 0:
		return rune('A' + r - 1), styleLabel
	}

	glyph := engine.CellGlyph(cell)
	switch cell.Kind {
	case engine.Wall:
		return glyph, styleWall
	case engine.Player:
		return glyph, stylePlayer
	case engine.Villain:
		return glyph, styleVillain
	case engine.Brick:
		return glyph, styleBrick
	case engine.Key:
		return glyph, styleKey
	case engine.Device:
		return glyph, styleDevice
	case engine.PowerUp:
		return glyph, stylePower
	}
	return glyph, styleDefault
}
