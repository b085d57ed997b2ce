package engine

import (
	"errors"

	"github.com/vegasq/filterx/frame"
)

// Plan is the deferred relational plan a Source mutates. Every method
// returns a new plan; the receiver is left untouched.
type Plan interface {
	Filter(pred frame.Expr) Plan
	Select(exprs ...frame.Expr) Plan
	WithColumns(exprs ...frame.Expr) Plan
	Drop(names ...string) Plan
	Rename(old, new []string) Plan
	Sort(by []string, opts frame.SortOptions) Plan
	Unique(subset []string, keep frame.KeepStrategy) Plan
	Slice(offset int64, n int) Plan
	Tail(n int) Plan
	GroupByCount(keys []string, countName string) Plan
	SemiJoin(right Plan, on []string) Plan
	Collect() (*frame.Frame, error)
	Fetch(n int) (*frame.Frame, error)
	Describe() string
}

var errForeignPlan = errors.New("semi join requires a plan built by NewPlan")

// NewPlan returns a Plan over an in-memory frame.
func NewPlan(f *frame.Frame) Plan { return lazyPlan{lf: f.Lazy()} }

type lazyPlan struct {
	lf  *frame.LazyFrame
	err error
}

func (p lazyPlan) wrap(lf *frame.LazyFrame) Plan { return lazyPlan{lf: lf, err: p.err} }

func (p lazyPlan) Filter(pred frame.Expr) Plan         { return p.wrap(p.lf.Filter(pred)) }
func (p lazyPlan) Select(exprs ...frame.Expr) Plan     { return p.wrap(p.lf.Select(exprs...)) }
func (p lazyPlan) WithColumns(exprs ...frame.Expr) Plan { return p.wrap(p.lf.WithColumns(exprs...)) }
func (p lazyPlan) Drop(names ...string) Plan           { return p.wrap(p.lf.Drop(names...)) }
func (p lazyPlan) Rename(old, new []string) Plan       { return p.wrap(p.lf.Rename(old, new)) }
func (p lazyPlan) Slice(offset int64, n int) Plan      { return p.wrap(p.lf.Slice(offset, n)) }
func (p lazyPlan) Tail(n int) Plan                     { return p.wrap(p.lf.Tail(n)) }
func (p lazyPlan) Describe() string                    { return p.lf.Describe() }

func (p lazyPlan) Sort(by []string, opts frame.SortOptions) Plan {
	return p.wrap(p.lf.Sort(by, opts))
}

func (p lazyPlan) Unique(subset []string, keep frame.KeepStrategy) Plan {
	return p.wrap(p.lf.Unique(subset, keep))
}

func (p lazyPlan) GroupByCount(keys []string, countName string) Plan {
	return p.wrap(p.lf.GroupByCount(keys, countName))
}

func (p lazyPlan) SemiJoin(right Plan, on []string) Plan {
	r, ok := right.(lazyPlan)
	if !ok {
		return lazyPlan{lf: p.lf, err: errForeignPlan}
	}
	if r.err != nil {
		return lazyPlan{lf: p.lf, err: r.err}
	}
	return p.wrap(p.lf.SemiJoin(r.lf, on))
}

func (p lazyPlan) Collect() (*frame.Frame, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.lf.Collect()
}

func (p lazyPlan) Fetch(n int) (*frame.Frame, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.lf.Fetch(n)
}
