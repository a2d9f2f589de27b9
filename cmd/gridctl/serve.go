package main

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/goliatone/go-users/pkg/types"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
	"github.com/goliatone/go-widgetgrid/components/dashboard/gorouter"
	"github.com/goliatone/go-widgetgrid/components/dashboard/httpapi"
	"github.com/goliatone/go-widgetgrid/pkg/activity"
	"github.com/goliatone/go-widgetgrid/pkg/activity/usersink"
)

type serveCmd struct {
	Addr     string `help:"Listen address (overrides server.addr)."`
	BasePath string `name:"base-path" help:"Route prefix (overrides server.base_path)."`
	Activity bool   `default:"true" negatable:"" help:"Log layout changes as activity records."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *globals, logger *slog.Logger) error {
	rt, err := g.runtime(logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	broadcast := dashboard.NewBroadcastHook()
	hooks := dashboard.RefreshHooks{broadcast}
	if cmd.Activity {
		emitter := activity.NewEmitter(activity.Hooks{usersink.Hook{Sink: logSink{logger: logger}}}, activity.Config{Enabled: true})
		hooks = append(hooks, activity.NewLayoutHook(emitter))
	}
	service, err := rt.service(true, hooks)
	if err != nil {
		return err
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return err
	}
	basePath := firstNonEmpty(cmd.BasePath, rt.cfg.Server.BasePath)
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Title:    "Researcher Dashboard",
		BasePath: basePath,
	})

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		API:        httpapi.NewCommandExecutor(service, nil),
		Broadcast:  broadcast,
		BasePath:   basePath,
	}); err != nil {
		return err
	}

	addr := firstNonEmpty(cmd.Addr, rt.cfg.Server.Addr)
	logger.Info("dashboard ready", "addr", addr, "base_path", basePath, "storage", rt.cfg.Storage.Driver)
	return server.Serve(addr)
}

type logSink struct {
	logger *slog.Logger
}

func (s logSink) Log(ctx context.Context, record types.ActivityRecord) error {
	s.logger.InfoContext(ctx, "activity",
		"verb", record.Verb,
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
	)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
