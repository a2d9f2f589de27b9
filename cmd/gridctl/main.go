package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

type globals struct {
	Config string `short:"c" type:"path" help:"Config file (defaults to .widgetgrid.yaml in ./ or $HOME)."`
	DotEnv string `name:"dotenv" default:".env" type:"path" help:"Optional .env file loaded before WIDGETGRID_* lookups."`
	User   string `short:"u" env:"WIDGETGRID_USER" help:"Researcher id whose layout is edited."`
	Locale string `env:"WIDGETGRID_LOCALE" help:"Locale used for catalog titles."`
}

type cli struct {
	globals

	List     listCmd     `cmd:"" help:"Print the widgets on the grid in render order."`
	Add      addCmd      `cmd:"" help:"Append a widget of the given type."`
	Remove   removeCmd   `cmd:"" help:"Remove a widget by id."`
	Resize   resizeCmd   `cmd:"" help:"Set a widget size (small, medium, large)."`
	Cycle    cycleCmd    `cmd:"" help:"Advance a widget to its next allowed size."`
	Move     moveCmd     `cmd:"" help:"Move a widget to a drop position."`
	Seed     seedCmd     `cmd:"" help:"Place the starter layout on an empty grid."`
	Catalog  catalogCmd  `cmd:"" help:"List the widget types that can be added."`
	Manifest manifestCmd `cmd:"" help:"Record a catalog override in a manifest file."`
	Serve    serveCmd    `cmd:"" help:"Serve the dashboard over HTTP."`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	var app cli
	ctx := kong.Parse(&app,
		kong.Name("gridctl"),
		kong.Description("Manage researcher dashboard widget grids."),
		kong.UsageOnError(),
		kong.Bind(&app.globals, logger),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
