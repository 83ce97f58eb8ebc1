package ui

import (
	"context"

	"deskgate/auth"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type UserLoginPage struct {
	svc     *auth.Service
	onLogin func(w fyne.Window, session *auth.Session)

	username   *widget.Entry
	password   *widget.Entry
	visibility *widget.Button
	submit     *widget.Button
}

func NewUserLoginPage(svc *auth.Service, onLogin func(w fyne.Window, session *auth.Session)) *UserLoginPage {
	return &UserLoginPage{svc: svc, onLogin: onLogin}
}

func (p *UserLoginPage) Show(window fyne.Window) {
	title := widget.NewLabel("Sign In")
	title.TextStyle = fyne.TextStyle{Bold: true, Italic: true}
	title.Alignment = fyne.TextAlignCenter

	p.username = widget.NewEntry()
	p.username.SetPlaceHolder("Username")

	p.password = widget.NewPasswordEntry()
	p.password.SetPlaceHolder("Password")

	showPassword := false
	p.visibility = widget.NewButtonWithIcon("", theme.VisibilityIcon(), func() {
		showPassword = !showPassword
		p.password.Password = !showPassword
		if showPassword {
			p.visibility.SetIcon(theme.VisibilityOffIcon())
		} else {
			p.visibility.SetIcon(theme.VisibilityIcon())
		}
		p.password.Refresh()
	})

	p.submit = widget.NewButton("Login", func() {
		session, err := p.svc.Login(context.Background(), p.username.Text, p.password.Text)
		if err != nil {
			p.password.SetText("")
			dialog.ShowError(err, window)
			return
		}
		p.onLogin(window, session)
	})
	p.submit.Importance = widget.HighImportance
	p.password.OnSubmitted = func(string) { p.submit.OnTapped() }

	form := container.NewVBox(
		p.username,
		container.NewBorder(nil, nil, nil, p.visibility, p.password),
	)

	window.SetContent(framed(container.NewVBox(
		title,
		layout.NewSpacer(),
		form,
		p.submit,
		layout.NewSpacer(),
	)))
	window.Canvas().Focus(p.username)
}
