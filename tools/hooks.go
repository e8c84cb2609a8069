package tools

import (
	"context"

	"github.com/rs/zerolog"
)

// LogHooks returns options which log tool activity through the context logger
func LogHooks() []Option {
	return []Option{
		WithStartHook(func(ctx context.Context, title string, input any) {
			zerolog.Ctx(ctx).Debug().Str("tool", title).Interface("input", input).Msg("tool start")
		}),
		WithEndHook(func(ctx context.Context, title string, input any, output any) {
			zerolog.Ctx(ctx).Debug().Str("tool", title).Msg("tool done")
		}),
		WithErrorHook(func(ctx context.Context, title string, input any, err error) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("tool", title).Msg("tool failed")
		}),
	}
}
