package commands

import "context"

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	RunFlags `embed:""`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.Load(g)
	if err != nil {
		return err
	}
	if err := b.apply(cfg); err != nil {
		return err
	}

	ctx := context.Background()
	s, err := openSession(ctx, cfg, g.Logger)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.run(ctx, "cli")
	if res != nil {
		printSummary(g.Out, res)
	}
	return err
}
