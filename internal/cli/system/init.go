package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/coffeematch/internal/cli"
	"github.com/julianstephens/coffeematch/internal/config"
	"github.com/julianstephens/coffeematch/internal/utils"
)

// InitCmd writes the effective configuration to the config directory.
type InitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	path := filepath.Join(utils.ExpandPath(ctx.ConfigDir), config.FileName)
	if _, err := os.Stat(path); err == nil {
		if !c.Force {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to access existing config: %w", err)
	}

	if err := ctx.Config.Save(ctx.ConfigDir); err != nil {
		return err
	}
	ctx.Printf("Wrote configuration to: %s\n", path)
	ctx.Printf("  api_url:  %s\n", ctx.Config.APIURL)
	ctx.Printf("  timezone: %s\n", ctx.Config.Timezone)
	return nil
}
