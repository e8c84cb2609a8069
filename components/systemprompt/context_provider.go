package systemprompt

// ContextProvider is an interface that defines the title and info of a context provider
type ContextProvider interface {
	Title() string
	Info() string
}

// StaticContext is a ContextProvider with fixed content
type StaticContext struct {
	title string
	info  string
}

var _ ContextProvider = (*StaticContext)(nil)

func NewStaticContext(title string, info string) *StaticContext {
	return &StaticContext{title: title, info: info}
}

func (c *StaticContext) Title() string {
	return c.title
}

func (c *StaticContext) Info() string {
	return c.info
}

// FuncContext is a ContextProvider computing its info on every Generate
type FuncContext struct {
	title string
	fn    func() string
}

var _ ContextProvider = (*FuncContext)(nil)

func NewFuncContext(title string, fn func() string) *FuncContext {
	return &FuncContext{title: title, fn: fn}
}

func (c *FuncContext) Title() string {
	return c.title
}

func (c *FuncContext) Info() string {
	if c.fn == nil {
		return ""
	}
	return c.fn()
}
