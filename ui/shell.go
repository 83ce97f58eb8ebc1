package ui

import (
	"deskgate/auth"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// NewShell creates the borderless top-level window every page draws into.
// Drivers without splash window support get a regular window.
func NewShell(app fyne.App, size fyne.Size) fyne.Window {
	var window fyne.Window
	if drv, ok := app.Driver().(desktop.Driver); ok {
		window = drv.CreateSplashWindow()
	} else {
		window = app.NewWindow("")
	}
	// blank until a page is shown, but always closable
	window.SetContent(framed(layout.NewSpacer()))
	window.Resize(size)
	window.SetFixedSize(true)
	window.CenterOnScreen()
	return window
}

// framed adds the close control a borderless window lacks.
func framed(content fyne.CanvasObject) fyne.CanvasObject {
	closeBtn := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
		if app := fyne.CurrentApp(); app != nil {
			app.Quit()
		}
	})
	closeBtn.Importance = widget.LowImportance
	return container.NewBorder(
		container.NewHBox(layout.NewSpacer(), closeBtn),
		nil, nil, nil,
		container.NewPadded(content),
	)
}

// Flow links the pages: setup leads to login, login to home, logout back
// to login.
type Flow struct {
	svc *auth.Service
}

func NewFlow(svc *auth.Service) *Flow {
	return &Flow{svc: svc}
}

func (f *Flow) AdminSetup() *AdminSetupPage {
	return NewAdminSetupPage(f.svc, func(w fyne.Window) {
		f.UserLogin().Show(w)
	})
}

func (f *Flow) UserLogin() *UserLoginPage {
	return NewUserLoginPage(f.svc, func(w fyne.Window, session *auth.Session) {
		NewHomePage(f.svc, session, func(w fyne.Window) {
			f.UserLogin().Show(w)
		}).Show(w)
	})
}
