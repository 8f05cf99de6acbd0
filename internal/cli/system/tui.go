package system

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/keyring"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/session"
	"github.com/julianstephens/coffeematch/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	// A remembered login skips the auth screen; anything else just shows it.
	if err := ctx.Resume(); err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.Warn("Could not resume session", "error", err)
	}

	m := tui.NewModel(tui.Options{
		Ctx:      ctx.Ctx,
		Session:  ctx.Session,
		Workflow: ctx.Workflow,
		OnLogin: func(email string) {
			if err := keyring.SetLoginEmail(ctx.Config.APIURL, email); err != nil {
				logger.Warn("Could not remember login", "error", err)
			}
		},
		OnLogout: func() {
			if err := ctx.Forget(); err != nil {
				logger.Warn("Could not forget login", "error", err)
			}
		},
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
