package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/unbound-force/flowerbox/internal/report"
)

// errInterrupted is returned when the user leaves the interactive view
// before the command finishes.
var errInterrupted = errors.New("command interrupted")

// keyMap defines keybindings for the interactive TUI.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit, k.Help}}
}

var defaultKeyMap = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "stop command")),
	Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

// commandDoneMsg reports that the command exited.
type commandDoneMsg struct {
	err error
}

// runModel is the Bubble Tea model showing a stopwatch while a command
// runs.
type runModel struct {
	command     string
	stopwatch   stopwatch.Model
	help        help.Model
	keys        keyMap
	styles      report.Styles
	cancel      context.CancelFunc
	done        bool
	interrupted bool
	err         error
}

func newRunModel(command string, cancel context.CancelFunc) runModel {
	return runModel{
		command:   command,
		stopwatch: stopwatch.NewWithInterval(100 * time.Millisecond),
		help:      help.New(),
		keys:      defaultKeyMap,
		styles:    report.DefaultStyles(),
		cancel:    cancel,
	}
}

func (m runModel) Init() tea.Cmd {
	return m.stopwatch.Init()
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case commandDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.stopwatch, cmd = m.stopwatch.Update(msg)
	return m, cmd
}

func (m runModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Running " + m.command))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("Elapsed "))
	sb.WriteString(m.styles.Elapsed.Render(m.stopwatch.View()))
	sb.WriteString("\n")
	if m.done && m.err != nil {
		sb.WriteString(m.styles.Fail.Render(m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))

	return sb.String()
}

// runInteractive runs argv while the Bubble Tea stopwatch is shown on
// stderr. The command's combined output is buffered and copied to
// stdout once the view closes.
func runInteractive(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out bytes.Buffer
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Stdout = &out
	c.Stderr = &out
	if err := c.Start(); err != nil {
		return err
	}

	p := tea.NewProgram(newRunModel(strings.Join(argv, " "), cancel),
		tea.WithAltScreen(), tea.WithOutput(stderr))

	exited := make(chan error, 1)
	go func() {
		err := c.Wait()
		exited <- err
		p.Send(commandDoneMsg{err: err})
	}()

	final, runErr := p.Run()
	cancel()
	waitErr := <-exited

	if _, err := io.Copy(stdout, &out); err != nil {
		return fmt.Errorf("copying command output: %w", err)
	}
	if runErr != nil {
		return fmt.Errorf("running interactive view: %w", runErr)
	}
	if m, ok := final.(runModel); ok && m.interrupted && !m.done {
		return errInterrupted
	}
	return waitErr
}
