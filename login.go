package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sales-pacing-console/internal/session"
	"sales-pacing-console/internal/source"
)

type loginStep int

const (
	stepRole loginStep = iota
	stepIdentity
	stepPassword
)

const maxMatches = 8

type loginModel struct {
	step      loginStep
	roleIndex int
	identity  textinput.Model
	password  textinput.Model
	matches   []string
	suggested bool
	cursor    int
	chosen    string
	err       string
	directory *session.Directory
	auth      *session.Authenticator
}

// loggedInMsg carries a successful login to the root model.
type loggedInMsg struct {
	identity session.Identity
}

func newLoginModel(snap source.Snapshot) loginModel {
	identity := textinput.New()
	identity.Placeholder = "type to search"
	identity.CharLimit = 80
	identity.Width = 40

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 40

	return loginModel{
		identity:  identity,
		password:  password,
		directory: session.NewDirectory(snap.Users, snap.Plans),
		auth:      session.NewAuthenticator(snap.Users, snap.Plans),
	}
}

// withSnapshot swaps the credential and identity tables after a reload.
func (l loginModel) withSnapshot(snap source.Snapshot) loginModel {
	l.directory = session.NewDirectory(snap.Users, snap.Plans)
	l.auth = session.NewAuthenticator(snap.Users, snap.Plans)
	l.refreshMatches()
	return l
}

func (l loginModel) role() session.Role {
	return session.Roles[l.roleIndex]
}

// freeText roles type a username instead of picking from a list.
func (l loginModel) freeText() bool {
	return l.role() == session.RoleAdmin
}

func (l *loginModel) refreshMatches() {
	l.cursor = 0
	l.suggested = false
	if l.freeText() {
		l.matches = nil
		return
	}
	term := l.identity.Value()
	l.matches = l.directory.Search(l.role(), term)
	if len(l.matches) == 0 && strings.TrimSpace(term) != "" {
		l.matches = l.directory.Suggest(l.role(), term, 3)
		l.suggested = true
	}
	if len(l.matches) > maxMatches {
		l.matches = l.matches[:maxMatches]
	}
}

func (l loginModel) Update(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch l.step {
	case stepRole:
		return l.updateRole(msg)
	case stepIdentity:
		return l.updateIdentity(msg)
	default:
		return l.updatePassword(msg)
	}
}

func (l loginModel) updateRole(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if l.roleIndex > 0 {
			l.roleIndex--
		}
	case "down", "j":
		if l.roleIndex < len(session.Roles)-1 {
			l.roleIndex++
		}
	case "enter":
		l.step = stepIdentity
		l.err = ""
		l.identity.Reset()
		if l.freeText() {
			l.identity.Placeholder = "username"
		} else {
			l.identity.Placeholder = "type to search"
		}
		l.refreshMatches()
		cmd := l.identity.Focus()
		return l, cmd
	}
	return l, nil
}

func (l loginModel) updateIdentity(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		l.identity.Blur()
		l.step = stepRole
		l.err = ""
		return l, nil
	case "up":
		if l.cursor > 0 {
			l.cursor--
		}
		return l, nil
	case "down":
		if l.cursor < len(l.matches)-1 {
			l.cursor++
		}
		return l, nil
	case "enter":
		chosen := strings.TrimSpace(l.identity.Value())
		if !l.freeText() {
			if len(l.matches) == 0 {
				l.err = fmt.Sprintf("No %s matches %q", l.role().Label(), chosen)
				return l, nil
			}
			chosen = l.matches[l.cursor]
		}
		if chosen == "" {
			l.err = session.ErrIdentityRequired.Error()
			return l, nil
		}
		l.chosen = chosen
		l.err = ""
		l.step = stepPassword
		l.identity.Blur()
		l.password.Reset()
		cmd := l.password.Focus()
		return l, cmd
	}

	var cmd tea.Cmd
	l.identity, cmd = l.identity.Update(msg)
	l.refreshMatches()
	return l, cmd
}

func (l loginModel) updatePassword(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		l.password.Blur()
		l.step = stepIdentity
		l.err = ""
		cmd := l.identity.Focus()
		return l, cmd
	case "enter":
		identity, err := l.auth.Login(l.role(), l.chosen, l.password.Value())
		if err != nil {
			l.err = loginError(err)
			l.password.Reset()
			return l, nil
		}
		l.err = ""
		l.password.Blur()
		return l, func() tea.Msg { return loggedInMsg{identity: identity} }
	}

	var cmd tea.Cmd
	l.password, cmd = l.password.Update(msg)
	return l, cmd
}

func loginError(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return "Invalid credentials. Check your password."
	case errors.Is(err, session.ErrDistributorNotFound):
		return "No distributor is linked to this salesman."
	default:
		return err.Error()
	}
}

func (l loginModel) View() string {
	lines := []string{headerStyle.Render("EVPM Sales Pacing Console"), subtle.Render("Sign in"), ""}

	switch l.step {
	case stepRole:
		lines = append(lines, "Role:")
		for i, r := range session.Roles {
			cursor := "  "
			label := r.Label()
			if i == l.roleIndex {
				cursor = "> "
				label = accent.Render(label)
			}
			lines = append(lines, cursor+label)
		}
		lines = append(lines, "", subtle.Render("↑/↓ choose · enter continue · ctrl+c quit"))
	case stepIdentity:
		lines = append(lines, fmt.Sprintf("Role: %s", l.role().Label()), "", l.identity.View())
		if l.suggested && len(l.matches) > 0 {
			lines = append(lines, warnStyle.Render("No exact match. Did you mean:"))
		}
		for i, match := range l.matches {
			cursor := "  "
			if i == l.cursor {
				cursor = "> "
				match = accent.Render(match)
			}
			lines = append(lines, cursor+match)
		}
		lines = append(lines, "", subtle.Render("type to search · ↑/↓ pick · enter continue · esc back"))
	case stepPassword:
		lines = append(lines,
			fmt.Sprintf("Role: %s", l.role().Label()),
			fmt.Sprintf("Identity: %s", l.chosen),
		)
		if l.role() == session.RoleSalesman {
			lines = append(lines, subtle.Render("Use your distributor's password."))
		}
		lines = append(lines, "", l.password.View(), "", subtle.Render("enter sign in · esc back"))
	}

	if l.err != "" {
		lines = append(lines, "", statusBehind.Render(l.err))
	}
	return panel.Render(strings.Join(lines, "\n"))
}
