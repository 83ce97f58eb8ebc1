// Package bootstrap decides which screen a freshly started window shows.
//
// It opens the database, and if that works it shows the administrator setup
// page when the configured table is empty and the login page otherwise. A
// failed connection is logged and leaves the window without content.
package bootstrap

import (
	"context"
	"errors"

	"deskgate/db"

	"fyne.io/fyne/v2"
	"go.uber.org/zap"
)

// Page is a screen that draws itself into a window.
type Page interface {
	Show(w fyne.Window)
}

type Bootstrap struct {
	// Connect opens the database. Errors are logged, never returned.
	Connect func(ctx context.Context) (*db.DB, error)
	// EmptyCheckTable is the table whose emptiness selects the setup page.
	EmptyCheckTable string
	AdminSetup      func(conn *db.DB) Page
	UserLogin       func(conn *db.DB) Page
	Logger          *zap.Logger
}

// Run shows the first screen in w and always leaves its title empty. It
// returns the open connection, or nil when none could be established.
func (b *Bootstrap) Run(ctx context.Context, w fyne.Window) *db.DB {
	defer w.SetTitle("")

	logger := b.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := b.Connect(ctx)
	if err != nil {
		var connErr *db.ConnectionError
		if errors.As(err, &connErr) && connErr.Err != nil {
			logger.Error(connErr.Err.Error(), zap.String("path", connErr.Path))
		} else {
			logger.Error(err.Error())
		}
		return nil
	}
	if conn == nil {
		logger.Error("connect returned no database handle")
		return nil
	}

	empty, err := conn.IsEmpty(ctx, b.EmptyCheckTable)
	if err != nil {
		logger.Error("emptiness check failed", zap.String("table", b.EmptyCheckTable), zap.Error(err))
		return conn
	}

	if empty {
		logger.Info("no accounts found, showing administrator setup", zap.String("table", b.EmptyCheckTable))
		b.AdminSetup(conn).Show(w)
	} else {
		logger.Info("showing login")
		b.UserLogin(conn).Show(w)
	}
	return conn
}
