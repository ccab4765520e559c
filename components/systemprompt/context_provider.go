package systemprompt

// ContextProvider contributes a titled block of extra context to a system prompt.
type ContextProvider interface {
	Title() string
	Info() string
}

// StaticProvider is a fixed title/info pair.
type StaticProvider struct {
	ProviderTitle string
	ProviderInfo  string
}

func (p StaticProvider) Title() string {
	return p.ProviderTitle
}

func (p StaticProvider) Info() string {
	return p.ProviderInfo
}
