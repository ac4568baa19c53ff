package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text user interface wrapping a Debugger: a register/flag
// panel, an output log, and a command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	RegisterView *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

// NewTUI builds a TUI around d.
func NewTUI(d *Debugger) *TUI {
	t := &TUI{
		Debugger: d,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ")
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		line := t.CommandInput.GetText()
		t.CommandInput.SetText("")
		if err := t.Debugger.Command(line); err != nil {
			fmt.Fprintf(&t.Debugger.Output, "error: %v\n", err)
		}
		t.refresh()
	})
}

func (t *TUI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 0, 1, false).
		AddItem(t.OutputView, 0, 3, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.App.SetRoot(left, true).SetFocus(t.CommandInput)
}

func (t *TUI) refresh() {
	t.RegisterView.SetText(t.Debugger.RegisterDump())
	t.OutputView.SetText(t.Debugger.Output.String())
	t.OutputView.ScrollToEnd()
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.Run()
}
