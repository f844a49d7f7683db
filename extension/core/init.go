// init.go implements the "flagsync init" command for project scaffolding.
//
// Separated from extension.go to isolate init-specific logic. Init is
// special because it runs before a project config exists.
//
// Design: Init is safe to re-run. It never overwrites an existing config
// or touches a flags directory that already holds flags unless --force is
// given, so running it in an existing project only fills the gaps.

package core

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpl-au/flagsync/cmd"
	"github.com/jpl-au/flagsync/extension"
	"github.com/jpl-au/flagsync/internal/log"
	"github.com/jpl-au/flagsync/internal/service"
)

func newInitCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "init",
		Short: "Initialise a flagsync project",
		Long: `Creates .flagsync/config.yaml and the flags directory with an example flag.

  flagsync init                     # scaffold in the working directory
  flagsync init --dir ./web         # scaffold in another directory
  flagsync init --project-id 12345  # store the remote project id

An existing config is left alone and the example flag is only written to
an empty flags directory. Use --force to overwrite both.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
	c.Flags().BoolP(extension.FlagForce, "f", false, "Overwrite an existing config and example flag")
	c.Flags().String(extension.FlagProjectID, "", "Remote project id (remote.project_id)")
	return c
}

func runInit(c *cobra.Command, _ []string) error {
	force, _ := c.Flags().GetBool(extension.FlagForce)
	projectID, _ := c.Flags().GetString(extension.FlagProjectID)

	res, err := service.Init(cmd.Base(), service.InitOptions{Force: force, ProjectID: projectID})

	log.Event("core:init", "init").
		Path(cmd.Base()).
		Detail("force", force).
		Detail("created", len(res.Created)).
		Write(err)

	if err != nil {
		return cmd.PrintJSONError(err)
	}

	if cmd.JSON() {
		return cmd.PrintJSON(res)
	}
	if len(res.Created) == 0 {
		fmt.Fprintf(cmd.Out(), "Already initialised (config %s)\n", res.Config)
		return nil
	}
	for _, p := range res.Created {
		fmt.Fprintf(cmd.Out(), "created %s\n", p)
	}
	fmt.Fprintf(cmd.Out(), "Initialised flagsync project, flags in %s\n", res.FlagsDir)
	return nil
}
