package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/focusflow/internal/store"
)

type groupsModel struct {
	store  *store.Store
	userID string
	name   string // the member's display name, used when joining
	width  int
	height int

	groups    []store.Group
	members   []store.Member
	cursor    int
	currentID string // group the timer currently records into

	formActive bool
	form       *huh.Form
	formType   string // "create", "join"

	// Form field pointers (survive value copies)
	formName *string
	formCode *string
}

func newGroupsModel(s *store.Store, userID, displayName, currentID string) groupsModel {
	name, code := "", ""
	return groupsModel{
		store:     s,
		userID:    userID,
		name:      displayName,
		currentID: currentID,
		formName:  &name,
		formCode:  &code,
	}
}

func (g *groupsModel) setSize(w, h int) {
	g.width = w
	g.height = h
}

type groupsDataMsg struct {
	groups []store.Group
}

type membersDataMsg struct {
	members []store.Member
}

func (g groupsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		groups, _ := g.store.ListGroups(g.userID)
		return groupsDataMsg{groups: groups}
	}
}

func (g groupsModel) refreshMembers() tea.Cmd {
	if g.cursor >= len(g.groups) {
		return nil
	}
	gid := g.groups[g.cursor].ID
	return func() tea.Msg {
		members, _ := g.store.ListMembers(gid)
		return membersDataMsg{members: members}
	}
}

func (g groupsModel) update(msg tea.Msg) (groupsModel, tea.Cmd) {
	if g.formActive && g.form != nil {
		return g.updateForm(msg)
	}

	switch msg := msg.(type) {
	case groupsDataMsg:
		g.groups = msg.groups
		if g.cursor >= len(g.groups) {
			g.cursor = max(0, len(g.groups)-1)
		}
		return g, g.refreshMembers()

	case membersDataMsg:
		g.members = msg.members
		return g, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if g.cursor > 0 {
				g.cursor--
				return g, g.refreshMembers()
			}
		case key.Matches(msg, keys.Down):
			if g.cursor < len(g.groups)-1 {
				g.cursor++
				return g, g.refreshMembers()
			}
		case key.Matches(msg, keys.Enter):
			if g.cursor < len(g.groups) {
				grp := g.groups[g.cursor]
				g.currentID = grp.ID
				return g, func() tea.Msg {
					return groupSelectedMsg{id: grp.ID, name: grp.Name}
				}
			}
		case key.Matches(msg, keys.New):
			return g.showCreateForm()
		case key.Matches(msg, keys.Join):
			return g.showJoinForm()
		}
	}
	return g, nil
}

func (g groupsModel) showCreateForm() (groupsModel, tea.Cmd) {
	*g.formName = ""
	g.formType = "create"

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Group Name").Value(g.formName),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g groupsModel) showJoinForm() (groupsModel, tea.Cmd) {
	*g.formCode = ""
	g.formType = "join"

	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Invite Code").Value(g.formCode),
		),
	).WithShowHelp(true).WithShowErrors(true)

	g.formActive = true
	return g, g.form.Init()
}

func (g groupsModel) updateForm(msg tea.Msg) (groupsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			g.formActive = false
			g.form = nil
			return g, nil
		}
	}

	form, cmd := g.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		g.form = f
	}

	if g.form.State == huh.StateCompleted {
		g.formActive = false
		g.form = nil
		switch g.formType {
		case "create":
			if *g.formName != "" {
				grp, err := g.store.CreateGroup(*g.formName, g.userID, g.name)
				if err != nil {
					return g, func() tea.Msg {
						return statusMsg{text: "Could not create group: " + err.Error(), isError: true}
					}
				}
				return g, tea.Batch(g.refresh(), func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Created %s — invite code %s", grp.Name, grp.InviteCode)}
				})
			}
		case "join":
			if *g.formCode != "" {
				grp, err := g.store.JoinGroup(*g.formCode, g.userID, g.name)
				if err != nil {
					return g, func() tea.Msg {
						return statusMsg{text: "Could not join: " + err.Error(), isError: true}
					}
				}
				return g, tea.Batch(g.refresh(), func() tea.Msg {
					return statusMsg{text: "Joined " + grp.Name}
				})
			}
		}
		return g, g.refresh()
	}

	return g, cmd
}

func (g groupsModel) view() string {
	if g.formActive && g.form != nil {
		title := titleStyle.Render("New Group")
		if g.formType == "join" {
			title = titleStyle.Render("Join Group")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", g.form.View())
		return panelStyle.Width(g.width - 4).Render(content)
	}

	w := g.width - 4
	title := titleStyle.Render("Groups")

	if len(g.groups) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No groups yet. Press n to create one or i to join by code."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-10s", "", "Name", "Invite"))
	rows = append(rows, header)

	for i, grp := range g.groups {
		cursor := "  "
		style := normalItemStyle
		if i == g.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "  "
		if grp.ID == g.currentID {
			mark = accentStyle.Render("● ")
		}
		row := style.Render(fmt.Sprintf("%s%s%-24s %-10s", cursor, mark, grp.Name, grp.InviteCode))
		rows = append(rows, row)
	}

	if len(g.members) > 0 && g.cursor < len(g.groups) {
		rows = append(rows, "")
		rows = append(rows, secondaryStyle.Render("  Members"))
		for _, m := range g.members {
			rows = append(rows, normalItemStyle.Render("    "+m.DisplayName))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  i: join  enter: focus here"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
