package commands

import (
	"context"

	"github.com/de-tools/entra-atlas/pkg/runtime/app"
)

// AppLoader builds the application for a single command run. The caller
// closes the returned App.
type AppLoader func(ctx context.Context) (*app.App, error)

func withApp(ctx context.Context, load AppLoader, fn func(a *app.App) error) error {
	a, err := load(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
