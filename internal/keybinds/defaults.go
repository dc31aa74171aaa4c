package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerDashboardBindings(r)
	registerCreateBindings(r)
	registerSuccessBindings(r)
	registerConfirmBindings(r)
	registerHelpBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerDashboardBindings sets up keybindings when no modal is open
func registerDashboardBindings(r *Registry) {
	r.Register(ContextDashboard, "q", ActionQuit)
	r.Register(ContextDashboard, "?", ActionHelp)
	r.Register(ContextDashboard, "tab", ActionSwitchFocus)
	r.RegisterMultiple(ContextDashboard, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextDashboard, []string{"down", "j"}, ActionNavigateDown)
	r.Register(ContextDashboard, "r", ActionRefresh)
	r.Register(ContextDashboard, "n", ActionNewKey)
	r.RegisterMultiple(ContextDashboard, []string{"x", "d"}, ActionRevokeKey)
	r.Register(ContextDashboard, "L", ActionLogout)
}

// registerCreateBindings only binds non-printable keys so typing is never captured
func registerCreateBindings(r *Registry) {
	r.Register(ContextCreate, "enter", ActionSubmit)
	r.Register(ContextCreate, "esc", ActionCloseModal)
}

func registerSuccessBindings(r *Registry) {
	r.Register(ContextSuccess, "c", ActionCopyKey)
	r.RegisterMultiple(ContextSuccess, []string{"esc", "enter", "q"}, ActionCloseModal)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"enter", "y"}, ActionConfirm)
	r.RegisterMultiple(ContextConfirm, []string{"esc", "n", "q"}, ActionCloseModal)
}

func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "?", "q"}, ActionCloseModal)
}
