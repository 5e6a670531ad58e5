package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/puggle/cmd/puggle/commands"
	derrors "git.home.luguber.info/inful/puggle/internal/foundation/errors"
	"git.home.luguber.info/inful/puggle/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{}
	parser := kong.Parse(cli,
		kong.Name("puggle"),
		kong.Description("Static blog generator"),
		kong.UsageOnError(),
		commands.Vars(version.String()),
		kong.Bind(global),
	)
	if err := parser.Run(cli); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
