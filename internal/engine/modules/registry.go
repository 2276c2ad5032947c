package modules

// Registry is the immutable set of modules the product knows about. It is
// loaded once at startup and passed into the resolver; template and
// override rows referencing keys outside it are ignored.
type Registry struct {
	defs  []Definition
	index map[string]int
}

func NewRegistry(defs []Definition) *Registry {
	index := make(map[string]int, len(defs))
	for i, d := range defs {
		index[d.Key] = i
	}
	return &Registry{defs: defs, index: index}
}

func (r *Registry) Definitions() []Definition {
	return r.defs
}

func (r *Registry) Lookup(key string) (Definition, bool) {
	i, ok := r.index[key]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

func (r *Registry) Keys() []string {
	keys := make([]string, len(r.defs))
	for i, d := range r.defs {
		keys[i] = d.Key
	}
	return keys
}

// DefaultRegistry lists every feature area of the portal.
func DefaultRegistry() *Registry {
	return NewRegistry([]Definition{
		{Key: "dashboard", DisplayName: "Dashboard", Description: "Overview and analytics", Icon: "LayoutDashboard", RoutePath: "/dashboard"},
		{Key: "projects", DisplayName: "Projects", Description: "Project management", Icon: "FolderKanban", RoutePath: "/projects"},
		{Key: "tasks", DisplayName: "Tasks", Description: "Task tracking and management", Icon: "CheckSquare", RoutePath: "/tasks"},
		{Key: "workflows", DisplayName: "Workflows", Description: "Automation workflows", Icon: "GitBranch", RoutePath: "/workflows"},
		{Key: "outreach", DisplayName: "Outreach", Description: "Campaign management", Icon: "Send", RoutePath: "/outreach"},
		{Key: "documents", DisplayName: "Documents", Description: "File storage and sharing", Icon: "FileText", RoutePath: "/documents"},
		{Key: "analytics", DisplayName: "Analytics", Description: "Reports and insights", Icon: "BarChart3", RoutePath: "/analytics"},
		{Key: "settings", DisplayName: "Settings", Description: "Workspace settings", Icon: "Settings", RoutePath: "/settings"},
	})
}
