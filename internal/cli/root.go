package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/julianstephens/coffeematch/internal/api"
	"github.com/julianstephens/coffeematch/internal/config"
	"github.com/julianstephens/coffeematch/internal/invite"
	"github.com/julianstephens/coffeematch/internal/keyring"
	"github.com/julianstephens/coffeematch/internal/logger"
	"github.com/julianstephens/coffeematch/internal/session"
	"github.com/julianstephens/coffeematch/internal/utils"
)

// Context is shared by every command. One invocation is one session: the
// remembered login is replayed on Resume and nothing else is persisted.
type Context struct {
	Ctx       context.Context
	Config    *config.Config
	ConfigDir string
	API       *api.Client
	Session   *session.Session
	Workflow  *invite.Workflow
	Out       io.Writer
}

// New wires a client, session and invite workflow for cfg.
func New(ctx context.Context, cfg *config.Config, configDir string, client *api.Client) (*Context, error) {
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if client == nil {
		client = api.NewHTTP(cfg.APIURL)
	}
	sess := session.New(client, session.Options{
		Location: loc,
		Days:     cfg.DateRangeDays,
	})
	return &Context{
		Ctx:       ctx,
		Config:    cfg,
		ConfigDir: configDir,
		API:       client,
		Session:   sess,
		Workflow:  invite.New(sess, client),
		Out:       os.Stdout,
	}, nil
}

// Resume signs back in as the remembered user.
func (c *Context) Resume() error {
	if c.Session.Active() {
		return nil
	}
	email, err := keyring.GetLoginEmail(c.Config.APIURL)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return session.ErrNoSession
		}
		return err
	}
	logger.Debug("Resuming session", "email", email)
	return c.Session.Login(c.Ctx, email)
}

// Remember stores email for later invocations. A keyring failure only warns;
// the current command still succeeds.
func (c *Context) Remember(email string) {
	if err := keyring.SetLoginEmail(c.Config.APIURL, email); err != nil {
		logger.Warn("Could not remember login", "error", err)
		c.Printf("⚠ Could not remember your login: %v\n", err)
	}
}

// Forget drops the remembered login.
func (c *Context) Forget() error {
	err := keyring.DeleteLoginEmail(c.Config.APIURL)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Location is the display timezone.
func (c *Context) Location() *time.Location {
	return c.Session.Location()
}
