package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/hugoify/cmd/hugoify/commands"
	"git.home.luguber.info/inful/hugoify/internal/foundation/errors"
	"git.home.luguber.info/inful/hugoify/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("hugoify"),
		kong.Description("Convert Sphinx XML API documentation into Hugo pages."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := &commands.Global{Out: os.Stdout}
	err := ctx.Run(global, &cli)

	adapter := errors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
	adapter.HandleError(err)
}
