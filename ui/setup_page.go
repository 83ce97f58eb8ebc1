package ui

import (
	"context"
	"fmt"

	"deskgate/auth"
	"deskgate/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// AdminSetupPage asks for the first administrator account.
type AdminSetupPage struct {
	svc    *auth.Service
	onDone func(w fyne.Window)

	username *widget.Entry
	password *widget.Entry
	confirm  *widget.Entry
	strength *widget.ProgressBar
	rating   *widget.Label
	suggest  *widget.Button
	submit   *widget.Button
}

func NewAdminSetupPage(svc *auth.Service, onDone func(w fyne.Window)) *AdminSetupPage {
	return &AdminSetupPage{svc: svc, onDone: onDone}
}

func (p *AdminSetupPage) Show(window fyne.Window) {
	title := widget.NewLabel("Create Administrator Account")
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	hint := widget.NewLabel("No accounts exist yet. The first account manages all others.")
	hint.Wrapping = fyne.TextWrapWord

	p.username = widget.NewEntry()
	p.username.SetPlaceHolder("Administrator username")

	p.password = widget.NewPasswordEntry()
	p.password.SetPlaceHolder(fmt.Sprintf("Password (min %d characters)", p.svc.MinPasswordLength()))

	p.confirm = widget.NewPasswordEntry()
	p.confirm.SetPlaceHolder("Confirm password")

	p.strength = widget.NewProgressBar()
	p.strength.TextFormatter = func() string { return "" }
	p.rating = widget.NewLabel("")
	p.password.OnChanged = p.updateStrength

	p.suggest = widget.NewButtonWithIcon("Suggest", theme.ViewRefreshIcon(), func() {
		pass, err := utils.GeneratePassword(utils.AccountPasswordConfig(max(p.svc.MinPasswordLength(), 16)))
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		p.password.Password = false
		p.password.SetText(pass)
		p.confirm.SetText(pass)
		p.password.Refresh()
	})

	p.submit = widget.NewButton("Create Account", func() {
		_, err := p.svc.SetupAdmin(context.Background(), p.username.Text, p.password.Text, p.confirm.Text)
		if err != nil {
			dialog.ShowError(err, window)
			return
		}
		p.onDone(window)
	})
	p.submit.Importance = widget.HighImportance
	p.confirm.OnSubmitted = func(string) { p.submit.OnTapped() }

	form := container.NewVBox(
		p.username,
		container.NewBorder(nil, nil, nil, p.suggest, p.password),
		p.confirm,
		container.NewBorder(nil, nil, nil, p.rating, p.strength),
	)

	window.SetContent(framed(container.NewVBox(
		title,
		hint,
		layout.NewSpacer(),
		form,
		p.submit,
		layout.NewSpacer(),
	)))
	window.Canvas().Focus(p.username)
}

func (p *AdminSetupPage) updateStrength(text string) {
	score := utils.EvaluatePasswordStrength(text)
	p.strength.SetValue(float64(score) / 100)
	if text == "" {
		p.rating.SetText("")
		return
	}
	p.rating.SetText(utils.StrengthLabel(score))
}
