// Package projection computes the type tree of every operation and fragment
// in a document set against a schema.
package projection

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jzeiders/gqlshape/pkg/documents"
	"github.com/jzeiders/gqlshape/pkg/fragments"
	"github.com/jzeiders/gqlshape/pkg/naming"
	"github.com/jzeiders/gqlshape/pkg/scalars"
	"github.com/jzeiders/gqlshape/pkg/schema"
	"github.com/jzeiders/gqlshape/pkg/typetree"
)

// Options configures a projection run
type Options struct {
	// Scalars overrides the default scalar tags
	Scalars map[string]string
	// Enums renames enum references
	Enums map[string]string
	// DedupeIdenticalShapes lets shapes with identical content share a
	// symbol within one naming scope
	DedupeIdenticalShapes bool
	// OmitOperationSuffix drops the Query/Mutation/Subscription suffix from
	// operation root symbols
	OmitOperationSuffix bool
	// AddTypename adds a __typename field to every object shape
	AddTypename bool
	// Concurrency bounds parallel root walks; zero means GOMAXPROCS
	Concurrency int
	Logger      *zap.Logger
}

// Stats reports memo cache usage of a run
type Stats struct {
	Hits   int64
	Misses int64
}

// Result holds the trees of a run in document order. A root that failed
// has an entry in Errors instead of a tree.
type Result struct {
	Trees  []*typetree.Tree
	Errors []*RootError
	Stats  Stats
}

// Err returns the per-root failures as RootErrors, or nil
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return RootErrors(r.Errors)
}

// Tree returns the tree with the given root symbol
func (r *Result) Tree(rootSymbol string) (*typetree.Tree, bool) {
	for _, t := range r.Trees {
		if t.RootSymbol == rootSymbol {
			return t, true
		}
	}
	return nil, false
}

// Engine projects document sets against one schema. It holds no per-run
// state and may run concurrently.
type Engine struct {
	schema *schema.Schema
	mapper *scalars.Mapper
	opts   Options
	log    *zap.Logger
}

// New creates an engine
func New(s *schema.Schema, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		schema: s,
		mapper: scalars.NewMapper(opts.Scalars, opts.Enums),
		opts:   opts,
		log:    logger,
	}
}

// Project is a shorthand for New(s, opts).Run(ctx, docs)
func Project(ctx context.Context, s *schema.Schema, docs []*documents.Document, opts Options) (*Result, error) {
	return New(s, opts).Run(ctx, docs)
}

type run struct {
	*Engine
	registry *fragments.Registry
	cache    *memoCache
}

type root struct {
	kind   typetree.Kind
	name   string
	symbol string
	op     *documents.Operation
	frag   *documents.Fragment
}

// Run projects every operation and fragment of the non-external documents.
// Fragments of external documents only serve spreads. Duplicate fragment
// names and spread cycles fail the whole run before any walk starts; every
// other error is reported per root in the result.
func (e *Engine) Run(ctx context.Context, docs []*documents.Document) (*Result, error) {
	registry := fragments.NewRegistry()
	if err := registry.Register(documents.CollectAllFragments(docs)...); err != nil {
		return nil, fmt.Errorf("building fragment registry: %w", err)
	}
	if err := registry.AssertAcyclic(); err != nil {
		return nil, fmt.Errorf("checking fragment spreads: %w", err)
	}

	r := &run{
		Engine:   e,
		registry: registry,
		cache:    newMemoCache(),
	}
	roots := e.roots(docs)

	trees := make([]*typetree.Tree, len(roots))
	failures := make([]*RootError, len(roots))

	limit := e.opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, rt := range roots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := r.project(rt)
			if err != nil {
				failures[i] = &RootError{Kind: rt.kind, Name: rt.name, Err: err}
				e.log.Debug("projection failed",
					zap.String("kind", string(rt.kind)),
					zap.String("name", rt.name),
					zap.Error(err),
				)
				return nil
			}
			trees[i] = tree
			e.log.Debug("projected",
				zap.String("kind", string(rt.kind)),
				zap.String("symbol", rt.symbol),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Stats: r.cache.stats()}
	for i := range roots {
		if trees[i] != nil {
			result.Trees = append(result.Trees, trees[i])
		}
		if failures[i] != nil {
			result.Errors = append(result.Errors, failures[i])
		}
	}

	e.log.Debug("projection finished",
		zap.Int("roots", len(roots)),
		zap.Int("failed", len(result.Errors)),
		zap.Int64("memoHits", result.Stats.Hits),
		zap.Int64("memoMisses", result.Stats.Misses),
	)
	return result, nil
}

// roots lists operations then fragments of each local document, documents
// in input order.
func (e *Engine) roots(docs []*documents.Document) []root {
	var roots []root
	anonymous := 0
	for _, doc := range docs {
		if doc == nil || doc.External {
			continue
		}
		for _, op := range doc.Operations {
			kind := typetree.KindOf(op.Type)
			name := op.Name
			if name == "" {
				anonymous++
				name = "Anonymous" + strconv.Itoa(anonymous)
			}
			roots = append(roots, root{
				kind:   kind,
				name:   name,
				symbol: e.operationSymbol(name, kind),
				op:     op,
			})
		}
		for _, frag := range doc.Fragments {
			if frag.External {
				continue
			}
			roots = append(roots, root{
				kind:   typetree.KindFragment,
				name:   frag.Name,
				symbol: naming.FragmentSymbol(frag.Name),
				frag:   frag,
			})
		}
	}
	return roots
}

func (e *Engine) operationSymbol(name string, kind typetree.Kind) string {
	symbol := naming.Pascal(name)
	if e.opts.OmitOperationSuffix {
		return symbol
	}
	switch kind {
	case typetree.KindMutation:
		return symbol + "Mutation"
	case typetree.KindSubscription:
		return symbol + "Subscription"
	default:
		return symbol + "Query"
	}
}

func (r *run) project(rt root) (*typetree.Tree, error) {
	if rt.frag != nil {
		return r.projectFragment(rt)
	}
	return r.projectOperation(rt)
}

func (r *run) projectOperation(rt root) (*typetree.Tree, error) {
	op := rt.op
	typeName, fallback := r.schema.QueryType(), "Query"
	switch op.Type {
	case documents.OperationTypeMutation:
		typeName, fallback = r.schema.MutationType(), "Mutation"
	case documents.OperationTypeSubscription:
		typeName, fallback = r.schema.SubscriptionType(), "Subscription"
	}
	if typeName == "" {
		return nil, &schema.UnknownTypeError{Name: fallback, Location: op.Location}
	}
	parent, err := r.resolve(typeName, op.Location)
	if err != nil {
		return nil, err
	}

	scope := naming.NewScope(rt.symbol, r.opts.DedupeIdenticalShapes)
	w := &walker{run: r, scope: scope}
	res, err := w.walk(parent, itemsOf(op.SelectionSet, false), naming.Path{})
	if err != nil {
		return nil, err
	}
	return &typetree.Tree{
		Kind:          rt.kind,
		Name:          op.Name,
		RootSymbol:    rt.symbol,
		TypeCondition: typeName,
		Root:          res,
		Assignments:   scope.Assignments(),
		Location:      op.Location,
	}, nil
}

func (r *run) projectFragment(rt root) (*typetree.Tree, error) {
	frag := rt.frag
	onType, err := r.resolve(frag.TypeCondition, frag.Location)
	if err != nil {
		return nil, err
	}
	entry := r.fragment(frag, onType)
	if entry.err != nil {
		return nil, entry.err
	}
	return &typetree.Tree{
		Kind:          typetree.KindFragment,
		Name:          frag.Name,
		RootSymbol:    rt.symbol,
		TypeCondition: frag.TypeCondition,
		Root:          entry.result,
		Assignments:   entry.assignments,
		Location:      frag.Location,
	}, nil
}

// fragment returns the memoized projection of frag's selection set against
// parent. It is walked in a scope of its own, so the result is identical for
// every spreading root.
func (r *run) fragment(frag *documents.Fragment, parent schema.Type) *memoEntry {
	key := memoKey{fragment: frag.Name, parent: parent.Name()}
	return r.cache.get(key, func() (typetree.Result, []naming.Assignment, error) {
		symbol := naming.FragmentSymbol(frag.Name)
		if parent.Name() != frag.TypeCondition {
			symbol += "On" + naming.Pascal(parent.Name())
		}
		scope := naming.NewScope(symbol, r.opts.DedupeIdenticalShapes)
		w := &walker{run: r, scope: scope}
		res, err := w.walk(parent, itemsOf(frag.SelectionSet, false), naming.Path{})
		if err != nil {
			return nil, nil, err
		}
		return res, scope.Assignments(), nil
	})
}

func (r *run) resolve(name string, at documents.Location) (schema.Type, error) {
	t, ok := r.schema.Type(name)
	if !ok {
		return nil, &schema.UnknownTypeError{Name: name, Location: at}
	}
	return t, nil
}
