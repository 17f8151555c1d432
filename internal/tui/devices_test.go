// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"raven/internal/audio"
)

var testDevices = []audio.Device{
	{ID: 0, Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 44100},
	{ID: 1, Name: "USB Mic", MaxInputChannels: 1, DefaultSampleRate: 48000},
}

func stubHostDevices(t *testing.T, devices []audio.Device, err error) {
	t.Helper()
	orig := hostDevices
	t.Cleanup(func() { hostDevices = orig })
	hostDevices = func() ([]audio.Device, error) { return devices, err }
}

func deviceUpdate(t *testing.T, m DeviceListModel, msg tea.Msg) (DeviceListModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(DeviceListModel), cmd
}

func loadedDeviceModel(t *testing.T) DeviceListModel {
	t.Helper()
	stubHostDevices(t, testDevices, nil)
	m := NewDeviceListModel()
	m, _ = deviceUpdate(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	m, _ = deviceUpdate(t, m, m.Init()())
	return m
}

func TestDeviceListRendersDevices(t *testing.T) {
	m := loadedDeviceModel(t)
	out := m.renderDevices()
	for _, want := range []string{"[0] Speakers (Output)", "[1] USB Mic (Input)", "48000 Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("device list missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(m.View(), "Audio Device List") {
		t.Error("list screen title missing")
	}
}

func TestDeviceListSelectInput(t *testing.T) {
	m := loadedDeviceModel(t)

	// Output-only devices cannot be configured for capture.
	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeScreen != ListScreen {
		t.Fatal("enter on an output device should stay on the list")
	}

	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.activeScreen != ConfigScreen || m.selectedSampleRate != 48000 {
		t.Fatalf("screen %v rate %v", m.activeScreen, m.selectedSampleRate)
	}

	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, cmd := deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("confirming a selection should quit")
	}
	sel, ok := m.Selection()
	if !ok || sel.DeviceID != 1 || sel.SampleRate != 88200 || sel.DeviceName != "USB Mic" {
		t.Errorf("Selection() = %+v, %v", sel, ok)
	}
}

func TestDeviceListEscapeReturnsToList(t *testing.T) {
	m := loadedDeviceModel(t)
	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.activeScreen != ListScreen {
		t.Error("esc should return to the list")
	}
	if _, ok := m.Selection(); ok {
		t.Error("no selection should be confirmed")
	}
}

func TestDeviceListError(t *testing.T) {
	stubHostDevices(t, nil, errors.New("mock device error"))
	m := NewDeviceListModel()
	m, _ = deviceUpdate(t, m, m.Init()())
	if !strings.Contains(m.View(), "mock device error") {
		t.Errorf("View() = %q", m.View())
	}
	if _, cmd := deviceUpdate(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Error("q should quit")
	}
}
