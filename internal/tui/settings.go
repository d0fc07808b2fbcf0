package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/store"
	"github.com/sadopc/focusflow/internal/timer"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultDuration *string
	sound           *string
	weekStart       *string
	selector        *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dd, snd, ws, sel := "", "", "", ""
	return settingsModel{
		store:           s,
		defaultDuration: &dd,
		sound:           &snd,
		weekStart:       &ws,
		selector:        &sel,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.defaultDuration = s.getVal("default_duration", "25")
	*s.sound = s.getVal("sound", "1")
	*s.weekStart = s.getVal("week_start", "monday")
	*s.selector = s.getVal("selector", "dial")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Default duration (min)").
				Validate(validDuration).
				Value(s.defaultDuration),
			huh.NewSelect[string]().Title("Duration control").
				Options(
					huh.NewOption("Dial", "dial"),
					huh.NewOption("Swipe", "swipe"),
				).Value(s.selector),
			huh.NewSelect[string]().Title("Sound").
				Options(
					huh.NewOption("On", "1"),
					huh.NewOption("Off", "0"),
				).Value(s.sound),
			huh.NewSelect[string]().Title("Week starts on").
				Options(
					huh.NewOption("Monday", "monday"),
					huh.NewOption("Sunday", "sunday"),
				).Value(s.weekStart),
		),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validDuration(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("enter a number of minutes")
	}
	if n < timer.MinDuration || n > timer.MaxDuration {
		return fmt.Errorf("must be between %d and %d", timer.MinDuration, timer.MaxDuration)
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting("default_duration", *s.defaultDuration)
	s.store.SetSetting("sound", *s.sound)
	s.store.SetSetting("week_start", *s.weekStart)
	s.store.SetSetting("selector", *s.selector)
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings. Selector changes apply on restart.")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "default_duration":
		if mins, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d min", mins)
		}
	case "sound":
		if v == "1" {
			return "on"
		}
		return "off"
	case "current_group":
		if v == "" {
			return "(none)"
		}
		return shortID(v)
	}
	return v
}
