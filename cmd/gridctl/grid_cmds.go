package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
	"github.com/goliatone/go-widgetgrid/components/dashboard/commands"
	"github.com/goliatone/go-widgetgrid/components/dashboard/queries"
)

var stdout io.Writer = os.Stdout

type listCmd struct{}

func (cmd *listCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		session, err := svc.Session(ctx, rt.viewer)
		if err != nil {
			return err
		}
		return printYAML(map[string]any{
			"storage_key": session.Grid().StorageKey(),
			"widgets":     session.Grid().Widgets(),
		})
	})
}

type addCmd struct {
	Type string            `arg:"" help:"Widget type, e.g. total_dreams or SymbolChart."`
	Set  map[string]string `help:"Widget config entries (key=value)."`
}

func (cmd *addCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	t, err := parseWidgetType(cmd.Type)
	if err != nil {
		return err
	}
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		var created dashboard.WidgetInstance
		err := commands.NewAddWidgetCommand(svc, nil).Execute(ctx, commands.AddWidgetInput{
			Viewer: rt.viewer,
			Type:   t,
			Config: decodeConfig(cmd.Set),
			Result: &created,
		})
		if err != nil {
			return err
		}
		return printYAML(created)
	})
}

type removeCmd struct {
	ID string `arg:"" help:"Widget id."`
}

func (cmd *removeCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		if err := commands.NewRemoveWidgetCommand(svc, nil).Execute(ctx, commands.RemoveWidgetInput{
			Viewer:   rt.viewer,
			WidgetID: cmd.ID,
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "removed %s\n", cmd.ID)
		return nil
	})
}

type resizeCmd struct {
	ID   string `arg:"" help:"Widget id."`
	Size string `arg:"" enum:"small,medium,large" help:"Target size."`
}

func (cmd *resizeCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	return runResize(ctx, g, logger, cmd.ID, dashboard.WidgetSize(cmd.Size))
}

type cycleCmd struct {
	ID string `arg:"" help:"Widget id."`
}

func (cmd *cycleCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	return runResize(ctx, g, logger, cmd.ID, "")
}

func runResize(ctx context.Context, g *globals, logger *slog.Logger, id string, size dashboard.WidgetSize) error {
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		var applied dashboard.WidgetSize
		if err := commands.NewResizeWidgetCommand(svc, nil).Execute(ctx, commands.ResizeWidgetInput{
			Viewer:   rt.viewer,
			WidgetID: id,
			Size:     size,
			Result:   &applied,
		}); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%s is now %s\n", id, applied)
		return nil
	})
}

type moveCmd struct {
	ID     string `arg:"" help:"Widget id."`
	Target int    `arg:"" help:"Drop position (0-based)."`
}

func (cmd *moveCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		if err := commands.NewReorderWidgetCommand(svc, nil).Execute(ctx, commands.ReorderWidgetInput{
			Viewer:   rt.viewer,
			WidgetID: cmd.ID,
			Target:   cmd.Target,
		}); err != nil {
			return err
		}
		session, err := svc.Session(ctx, rt.viewer)
		if err != nil {
			return err
		}
		return printYAML(session.Grid().Widgets())
	})
}

type seedCmd struct {
	Types []string `arg:"" optional:"" help:"Widget types to seed (defaults to the starter layout)."`
}

func (cmd *seedCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	types := make([]dashboard.WidgetType, 0, len(cmd.Types))
	for _, raw := range cmd.Types {
		t, err := parseWidgetType(raw)
		if err != nil {
			return err
		}
		types = append(types, t)
	}
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		return commands.NewSeedLayoutCommand(svc, nil).Execute(ctx, commands.SeedLayoutInput{
			Viewer: rt.viewer,
			Types:  types,
		})
	})
}

type catalogCmd struct {
	All bool `help:"Include singleton types already on the grid."`
}

func (cmd *catalogCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	return withService(g, logger, func(rt *runtime, svc *dashboard.Service) error {
		var entries []dashboard.CatalogEntry
		if cmd.All {
			entries = rt.catalog.Entries()
		} else {
			var err error
			entries, err = queries.NewSelectableTypesQuery(svc).Query(ctx, rt.viewer)
			if err != nil {
				return err
			}
		}
		rows := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, map[string]any{
				"type":         entry.Type,
				"kind":         entry.Kind,
				"title":        entry.TitleForLocale(rt.viewer.Locale),
				"default_size": entry.DefaultSize,
				"sizes":        fmt.Sprintf("%s..%s", entry.MinSize, entry.MaxSize),
			})
		}
		return printYAML(rows)
	})
}

func withService(g *globals, logger *slog.Logger, fn func(*runtime, *dashboard.Service) error) error {
	rt, err := g.runtime(logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	svc, err := rt.service(false, nil)
	if err != nil {
		return err
	}
	return fn(rt, svc)
}

// decodeConfig parses CLI values as YAML scalars so "limit=5" becomes an integer.
func decodeConfig(raw map[string]string) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		var decoded any
		if err := yaml.Unmarshal([]byte(v), &decoded); err != nil || decoded == nil {
			out[k] = v
			continue
		}
		out[k] = decoded
	}
	return out
}

func printYAML(v any) error {
	encoder := yaml.NewEncoder(stdout)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(v)
}
