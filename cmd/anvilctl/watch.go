// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/anvil/cmd/anvilctl/cli"
	"github.com/bureau-foundation/anvil/host"
)

func watchCommand() *cli.Command {
	var connection connectionFlags
	var interval time.Duration
	return &cli.Command{
		Name:    "watch",
		Summary: "Follow the host's state in a live view",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("watch", pflag.ContinueOnError)
			connection.register(flagSet)
			flagSet.DurationVar(&interval, "interval", 500*time.Millisecond, "refresh interval")
			return flagSet
		},
		Run: func(args []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			client, err := connection.client()
			if err != nil {
				return err
			}
			model := newWatchModel(statusSource{
				fetch:  func() (host.Status, error) { return fetchStatus(client) },
				toggle: func() error { return requestToggle(client) },
			}, interval, newStatusView(cli.NewRenderer(os.Stdout)))
			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

// statusSource is how the watch view reaches the host.
type statusSource struct {
	fetch  func() (host.Status, error)
	toggle func() error
}

type watchKeys struct {
	Toggle  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k watchKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Refresh, k.Quit}
}

func (k watchKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultWatchKeys() watchKeys {
	return watchKeys{
		Toggle:  key.NewBinding(key.WithKeys("t", " "), key.WithHelp("t", "toggle overlay")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

type statusMsg struct {
	status host.Status
	err    error
}

type tickMsg time.Time

type toggledMsg struct {
	err error
}

type watchModel struct {
	source   statusSource
	interval time.Duration
	view     statusView
	keys     watchKeys
	help     help.Model

	status  *host.Status
	err     error
	updated time.Time
	width   int
}

func newWatchModel(source statusSource, interval time.Duration, view statusView) watchModel {
	return watchModel{
		source:   source,
		interval: interval,
		view:     view,
		keys:     defaultWatchKeys(),
		help:     help.New(),
	}
}

func (m watchModel) fetch() tea.Cmd {
	return func() tea.Msg {
		status, err := m.source.fetch()
		return statusMsg{status: status, err: err}
	}
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(), m.tick())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetch()
		case key.Matches(msg, m.keys.Toggle):
			toggle := m.source.toggle
			return m, func() tea.Msg { return toggledMsg{err: toggle()} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tickMsg:
		return m, tea.Batch(m.fetch(), m.tick())

	case statusMsg:
		m.err = msg.err
		if msg.err == nil {
			status := msg.status
			m.status = &status
			m.updated = time.Now()
		}

	case toggledMsg:
		if msg.err != nil {
			m.err = msg.err
		}
		return m, m.fetch()
	}
	return m, nil
}

func (m watchModel) View() string {
	var builder strings.Builder
	switch {
	case m.status != nil:
		builder.WriteString(m.view.render(*m.status))
	case m.err == nil:
		builder.WriteString("connecting...\n")
	}
	if m.err != nil {
		builder.WriteString(m.view.bad.Render("error: " + m.err.Error()))
		builder.WriteByte('\n')
	}
	if !m.updated.IsZero() {
		builder.WriteString(m.view.label.Render("updated"))
		builder.WriteString(m.updated.Format(time.TimeOnly))
		builder.WriteByte('\n')
	}
	builder.WriteByte('\n')
	builder.WriteString(m.help.View(m.keys))
	return fitWidth(builder.String(), m.width)
}

// fitWidth truncates every line to width cells, leaving styling
// intact. A non-positive width leaves the text alone.
func fitWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		lines[index] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}
