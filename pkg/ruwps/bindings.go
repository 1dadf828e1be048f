package ruwps

// Binding ties a callback to the menu entry at Path. Missing submenus along
// the path are created when the binding is applied.
type Binding struct {
	Path     []string
	Callback Callback
}

// Clicked declares a binding for use with WithClicked.
func Clicked(cb Callback, path ...string) Binding {
	return Binding{Path: path, Callback: cb}
}

// Clicked binds cb to the entry at path. Before Run the binding is deferred
// until the menu is built; afterwards it applies at once.
func (a *App) Clicked(cb Callback, path ...string) {
	b := Clicked(cb, path...)
	if a.started {
		b.apply(a)
		return
	}
	a.bindings = append(a.bindings, b)
}

func (b Binding) apply(a *App) {
	if len(b.Path) == 0 {
		a.logger.Warn("Ignoring click binding without a path")
		return
	}
	if e := a.model.Root().Ensure(b.Path...); e != nil {
		e.SetCallback(b.Callback)
	}
}
