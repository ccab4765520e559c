package cot

// Option configures the chain-of-thought Generator.
type Option func(*Generator)

func WithBackground(background []string) Option {
	return func(g *Generator) {
		g.background = background
	}
}

func WithSteps(steps []string) Option {
	return func(g *Generator) {
		g.steps = steps
	}
}

func WithOutputInstructs(instructs []string) Option {
	return func(g *Generator) {
		g.outputInstructs = instructs
	}
}
