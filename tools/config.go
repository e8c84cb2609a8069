package tools

import "context"

// StartHook is called before a tool runs
type StartHook func(ctx context.Context, title string, input any)

// EndHook is called after a tool run succeeded
type EndHook func(ctx context.Context, title string, input any, output any)

// ErrorHook is called after a tool run failed
type ErrorHook func(ctx context.Context, title string, input any, err error)

// Config is embedded by every tool
type Config struct {
	// title the default title of the tool
	title string
	// description the default description of the tool
	description string
	startHook   StartHook
	endHook     EndHook
	errorHook   ErrorHook
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn StartHook) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn EndHook) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn ErrorHook) {
	c.errorHook = fn
}

// Start fires the start hook if any
func (c Config) Start(ctx context.Context, input any) {
	if c.startHook != nil {
		c.startHook(ctx, c.title, input)
	}
}

// End fires the end hook if err is nil, the error hook otherwise
func (c Config) End(ctx context.Context, input any, output any, err error) {
	if err != nil {
		if c.errorHook != nil {
			c.errorHook(ctx, c.title, input, err)
		}
		return
	}
	if c.endHook != nil {
		c.endHook(ctx, c.title, input, output)
	}
}
