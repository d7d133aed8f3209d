// Package normalize reconciles the C, C++ and Python documentation dialects into
// the canonical document model.
//
// Three stages run in order: adapt (dialect-agnostic cleanup), reclassify (the
// dialect ruleset moves members into sections) and members (canonical member
// bodies). Every stage works on its own copy of the previous stage's tree, so a
// stage never observes a half-rewritten input and each can be tested alone.
package normalize

import (
	"slices"
	"time"

	"git.home.luguber.info/inful/hugoify/internal/docmodel"
	"git.home.luguber.info/inful/hugoify/internal/doctree"
)

// Stage names.
const (
	StageAdapt      = "adapt"
	StageReclassify = "reclassify"
	StageMembers    = "members"
)

// Env is the per-run state shared by stages.
type Env struct {
	Options Options
	Dialect Dialect
	Title   string
}

// Stage is one tree-to-tree pass. Run mutates the tree it is given, which is
// always a private copy.
type Stage struct {
	Name     string
	Priority int // lower runs first
	Run      func(root *doctree.Node, env *Env) (*doctree.Node, error)
}

// Apply runs the stage on a copy of in and returns the new tree. in is left untouched.
func (s Stage) Apply(in *doctree.Node, env *Env) (*doctree.Node, error) {
	return s.Run(in.Clone(), env)
}

// Result is a finished canonical document.
type Result struct {
	Tree        *doctree.Node
	Dialect     Dialect
	Title       string
	Description string
}

// Pipeline is an ordered list of stages built once per configuration.
type Pipeline struct {
	opts   Options
	stages []Stage
}

// New builds the standard adapt, reclassify, members pipeline.
func New(opts Options) *Pipeline {
	stages := []Stage{
		{Name: StageMembers, Priority: 30, Run: normalizeMembers},
		{Name: StageAdapt, Priority: 10, Run: adapt},
		{Name: StageReclassify, Priority: 20, Run: reclassify},
	}
	slices.SortStableFunc(stages, func(a, b Stage) int {
		if a.Priority == b.Priority {
			if a.Name < b.Name {
				return -1
			}
			return 1
		}
		return a.Priority - b.Priority
	})
	return &Pipeline{opts: opts.withDefaults(), stages: stages}
}

// Stage returns the named stage.
func (p *Pipeline) Stage(name string) (Stage, bool) {
	for _, s := range p.stages {
		if s.Name == name {
			return s, true
		}
	}
	return Stage{}, false
}

// NewEnv returns a fresh environment for a run.
func (p *Pipeline) NewEnv() *Env {
	return &Env{Options: p.opts}
}

// Run normalizes a raw tree. The raw tree is not modified. Any stage error aborts
// the document.
func (p *Pipeline) Run(raw *doctree.Node) (*Result, error) {
	env := p.NewEnv()
	tree := raw
	for _, s := range p.stages {
		start := time.Now()
		out, err := s.Apply(tree, env)
		if p.opts.Observer != nil {
			p.opts.Observer(s.Name, out, time.Since(start), err)
		}
		if err != nil {
			return nil, err
		}
		tree = out
	}
	return &Result{
		Tree:        tree,
		Dialect:     env.Dialect,
		Title:       env.Title,
		Description: firstParagraph(tree),
	}, nil
}

// firstParagraph returns the text of the abstract's first paragraph.
func firstParagraph(doc *doctree.Node) string {
	abstract := docmodel.Section(doc, docmodel.SectionAbstract)
	if abstract == nil {
		return ""
	}
	if p := abstract.Child(docmodel.TagParagraph); p != nil {
		return collapse(p.TextContent())
	}
	return ""
}
