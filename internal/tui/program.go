// Package tui draws the editor and its keypad on a terminal screen.
package tui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"calc-editor/internal/editor"
	"calc-editor/internal/keyboard"
)

const (
	panelWidth = 26
	cellWidth  = 6
	title      = "Basic Calculator"
	help       = "Enter = | Bksp C | Esc AC | q quit"
)

type keyRole int

const (
	roleDigit keyRole = iota
	roleOperator
	roleDanger
	roleSuccess
)

type keyCap struct {
	label string
	role  keyRole
}

// keypad mirrors the button grid of the web calculator.
var keypad = [][]keyCap{
	{{"7", roleDigit}, {"8", roleDigit}, {"9", roleDigit}, {"/", roleOperator}},
	{{"4", roleDigit}, {"5", roleDigit}, {"6", roleDigit}, {"*", roleOperator}},
	{{"1", roleDigit}, {"2", roleDigit}, {"3", roleDigit}, {"-", roleOperator}},
	{{"00", roleDigit}, {"0", roleDigit}, {".", roleDigit}, {"+", roleOperator}},
	{{"AC", roleDanger}, {"C", roleDanger}, {"=", roleSuccess}},
}

var (
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleDisplay = tcell.StyleDefault.Background(tcell.ColorLightGray).Foreground(tcell.ColorBlack)
	styleError   = styleDisplay.Foreground(tcell.ColorDarkRed).Bold(true)
	styleHelp    = tcell.StyleDefault.Dim(true)
	styleByRole  = map[keyRole]tcell.Style{
		roleDigit:    tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue),
		roleOperator: tcell.StyleDefault.Foreground(tcell.ColorOrange),
		roleDanger:   tcell.StyleDefault.Foreground(tcell.ColorRed),
		roleSuccess:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
	}
)

// Program renders an editor and routes key presses into it.
type Program struct {
	screen tcell.Screen
	editor *editor.Editor
	logger *zap.Logger
}

// New returns a program drawing ed on screen. screen must be initialised.
func New(screen tcell.Screen, ed *editor.Editor, logger *zap.Logger) *Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Program{screen: screen, editor: ed, logger: logger}
}

// Run draws the initial frame and processes keys until ctx is done or the
// user quits.
func (p *Program) Run(ctx context.Context) error {
	p.Draw()
	adapter := keyboard.New(p.screen, p,
		keyboard.WithLogger(p.logger),
		keyboard.WithResizeHandler(func() {
			p.screen.Sync()
			p.Draw()
		}),
	)
	return adapter.Run(ctx)
}

// HandleAction applies a to the current snapshot and redraws.
func (p *Program) HandleAction(a editor.Action) {
	before := p.editor.Snapshot()
	after := p.editor.Dispatch(a)

	if a.Kind == editor.ActionEvaluate {
		p.logger.Info("expression evaluated",
			zap.String("expression", after.Buffer),
			zap.String("result", string(after.Result.Kind)),
			zap.String("text", after.Result.Text()),
		)
	} else if a.Rejected(before, after) {
		p.logger.Debug("action rejected",
			zap.String("action", a.String()),
			zap.String("buffer", before.Buffer),
		)
	}

	p.Draw()
}

// Draw renders the current snapshot.
func (p *Program) Draw() {
	s := p.editor.Snapshot()
	p.screen.Clear()

	drawText(p.screen, 1, 0, styleTitle, title)

	drawRight(p.screen, 1, 2, panelWidth, styleDisplay, s.Display())
	resultStyle := styleDisplay
	if s.Result.IsError() {
		resultStyle = styleError
	}
	drawRight(p.screen, 1, 3, panelWidth, resultStyle, s.Result.Text())

	for row, caps := range keypad {
		for col, kc := range caps {
			style := styleByRole[kc.role]
			if kc.role == roleOperator && s.OperatorLock {
				style = style.Dim(true)
			}
			drawCentered(p.screen, 1+col*cellWidth+col, 5+row*2, cellWidth, style, "["+kc.label+"]")
		}
	}

	drawText(p.screen, 1, 5+len(keypad)*2, styleHelp, help)
	p.screen.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}

// drawRight fills width cells with style and right-aligns text inside them.
func drawRight(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[len(runes)-width:]
	}
	for i := 0; i < width; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
	drawText(s, x+width-len(runes), y, style, string(runes))
}

func drawCentered(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	pad := (width - len([]rune(text))) / 2
	if pad < 0 {
		pad = 0
	}
	drawText(s, x+pad, y, style, text)
}

var _ keyboard.Handler = (*Program)(nil)
