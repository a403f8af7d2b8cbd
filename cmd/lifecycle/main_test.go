package main

import (
	"slices"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func TestRun_ScriptedScenario(t *testing.T) {
	cfg := scenario{
		owners:    2,
		mounts:    2,
		interval:  5 * time.Millisecond,
		hiddenFor: 20 * time.Millisecond,
	}
	if err := run(zap.NewNop(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestInteractive_FocusDrivesVisibility(t *testing.T) {
	m := newInteractiveModel(time.Hour)
	if err := m.mount("feed"); err != nil {
		t.Fatalf("mount: %v", err)
	}
	o, ok := m.host.Lookup("feed")
	if !ok {
		t.Fatal("feed not mounted")
	}

	m.Update(tea.BlurMsg{})
	if got := o.Registry().Paused(); !slices.Equal(got, []string{"poll"}) {
		t.Fatalf("Paused after blur = %v", got)
	}

	m.Update(tea.FocusMsg{})
	if got := o.Registry().Keys(); !slices.Equal(got, []string{"poll"}) {
		t.Fatalf("Keys after focus = %v", got)
	}

	if view := m.View(); view == "" {
		t.Fatal("empty view")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if m.host.Active("feed") || m.coord.Subscribed() {
		t.Fatal("quit should release every owner")
	}
}

func TestInteractive_SecondMountAddsNoEntry(t *testing.T) {
	m := newInteractiveModel(time.Hour)
	defer m.host.Close()

	m.mount("feed")
	m.mount("feed")
	o, _ := m.host.Lookup("feed")
	if o.Mounts() != 2 || o.Registry().Len() != 1 {
		t.Fatalf("mounts = %d entries = %d", o.Mounts(), o.Registry().Len())
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.host.Active("feed") {
		t.Fatal("first unmount should keep feed")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlD})
	if m.host.Active("feed") {
		t.Fatal("second unmount should release feed")
	}
}
