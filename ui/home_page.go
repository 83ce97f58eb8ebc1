package ui

import (
	"context"
	"fmt"
	"time"

	"deskgate/auth"
	"deskgate/db"
	"deskgate/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// HomePage is shown after login. Administrators also get a Users tab.
type HomePage struct {
	svc      *auth.Service
	session  *auth.Session
	onLogout func(w fyne.Window)

	tabs  *container.AppTabs
	users []db.User
	list  *widget.List
}

func NewHomePage(svc *auth.Service, session *auth.Session, onLogout func(w fyne.Window)) *HomePage {
	return &HomePage{svc: svc, session: session, onLogout: onLogout}
}

func (p *HomePage) Show(window fyne.Window) {
	p.tabs = container.NewAppTabs(
		container.NewTabItemWithIcon("Account", theme.AccountIcon(), p.accountTab(window)),
	)
	if p.session.IsAdmin() {
		p.tabs.Append(container.NewTabItemWithIcon("Users", theme.GridIcon(), p.usersTab(window)))
	}
	window.SetContent(framed(p.tabs))
}

func (p *HomePage) accountTab(window fyne.Window) fyne.CanvasObject {
	user := p.session.User

	greeting := widget.NewLabel(fmt.Sprintf("Signed in as %s", user.Username))
	greeting.TextStyle = fyne.TextStyle{Bold: true}
	role := widget.NewLabel(fmt.Sprintf("Role: %s", user.Role))
	since := widget.NewLabel(fmt.Sprintf("Session started %s", p.session.StartedAt.Local().Format(time.Kitchen)))

	changeBtn := widget.NewButtonWithIcon("Change Password", theme.SettingsIcon(), func() {
		p.showChangePasswordDialog(window)
	})
	logoutBtn := widget.NewButtonWithIcon("Logout", theme.LogoutIcon(), func() {
		p.onLogout(window)
	})

	return container.NewVBox(greeting, role, since, changeBtn, logoutBtn)
}

func (p *HomePage) usersTab(window fyne.Window) fyne.CanvasObject {
	p.list = widget.NewList(
		func() int {
			return len(p.users)
		},
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.AccountIcon()),
				widget.NewLabel("Username"),
				widget.NewLabel("role"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			cont := obj.(*fyne.Container)
			cont.Objects[1].(*widget.Label).SetText(p.users[id].Username)
			cont.Objects[2].(*widget.Label).SetText(string(p.users[id].Role))
		},
	)

	selected := -1
	removeBtn := widget.NewButtonWithIcon("Remove", theme.DeleteIcon(), func() {
		if selected < 0 || selected >= len(p.users) {
			return
		}
		target := p.users[selected].Username
		dialog.ShowConfirm("Remove User", fmt.Sprintf("Remove %s?", target), func(ok bool) {
			if !ok {
				return
			}
			if p.removeUser(window, target) {
				selected = -1
				p.list.UnselectAll()
			}
		}, window)
	})
	removeBtn.Disable()

	p.list.OnSelected = func(id widget.ListItemID) {
		selected = id
		removeBtn.Enable()
	}
	p.list.OnUnselected = func(widget.ListItemID) {
		selected = -1
		removeBtn.Disable()
	}

	addBtn := widget.NewButtonWithIcon("Add User", theme.ContentAddIcon(), func() {
		p.showAddUserDialog(window)
	})

	p.refreshUsers(window)
	return container.NewBorder(
		container.NewHBox(addBtn, removeBtn),
		nil,
		nil,
		nil,
		p.list,
	)
}

func (p *HomePage) refreshUsers(window fyne.Window) {
	users, err := p.svc.ListUsers(context.Background(), p.session)
	if err != nil {
		dialog.ShowError(err, window)
		return
	}
	p.users = users
	p.list.Refresh()
}

// removeUser reports whether target was removed; failures are shown in window.
func (p *HomePage) removeUser(window fyne.Window, target string) bool {
	if err := p.svc.RemoveUser(context.Background(), p.session, target); err != nil {
		dialog.ShowError(err, window)
		return false
	}
	p.refreshUsers(window)
	return true
}

func (p *HomePage) addUser(window fyne.Window, username, password string, role db.Role) bool {
	if _, err := p.svc.AddUser(context.Background(), p.session, username, password, password, role); err != nil {
		dialog.ShowError(err, window)
		return false
	}
	p.refreshUsers(window)
	return true
}

func (p *HomePage) changePassword(window fyne.Window, current, next, confirm string) bool {
	if err := p.svc.ChangePassword(context.Background(), p.session, current, next, confirm); err != nil {
		dialog.ShowError(err, window)
		return false
	}
	dialog.ShowInformation("Success", "Password changed", window)
	return true
}

func (p *HomePage) showAddUserDialog(window fyne.Window) {
	username := widget.NewEntry()
	password := widget.NewEntry()
	role := widget.NewSelect([]string{string(db.RoleUser), string(db.RoleAdmin)}, nil)
	role.SetSelected(string(db.RoleUser))

	generate := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		pass, err := utils.GeneratePassword(utils.AccountPasswordConfig(max(p.svc.MinPasswordLength(), 16)))
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		password.SetText(pass)
	})
	copyBtn := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		window.Clipboard().SetContent(password.Text)
	})

	dialog.ShowForm(
		"Add User",
		"Add",
		"Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Username", username),
			widget.NewFormItem("Password", container.NewBorder(nil, nil, nil, container.NewHBox(generate, copyBtn), password)),
			widget.NewFormItem("Role", role),
		},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			p.addUser(window, username.Text, password.Text, db.Role(role.Selected))
		},
		window,
	)
}

func (p *HomePage) showChangePasswordDialog(window fyne.Window) {
	current := widget.NewPasswordEntry()
	next := widget.NewPasswordEntry()
	confirm := widget.NewPasswordEntry()

	dialog.ShowForm(
		"Change Password",
		"Change",
		"Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Current", current),
			widget.NewFormItem("New", next),
			widget.NewFormItem("Confirm", confirm),
		},
		func(confirmed bool) {
			if !confirmed {
				return
			}
			p.changePassword(window, current.Text, next.Text, confirm.Text)
		},
		window,
	)
}
