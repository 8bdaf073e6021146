// Package loader implements component E: a pool of workers that drives
// parallel resolve -> load -> parse -> scan and reports graph edges back to
// the single-threaded graph builder over a channel. Cancellation piggybacks
// on errgroup.Group (golang.org/x/sync/errgroup): the first worker error
// cancels the shared context, which is exactly the "first error stops
// further scheduling, no retry" semantics §7 specifies, without hand-
// rolling the cancellation esbuild's own scanner does with a CancelFlag.
package loader

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"module-bundler/internal/berrors"
	"module-bundler/internal/config"
	"module-bundler/internal/graph"
	"module-bundler/internal/jsparser"
	"module-bundler/internal/logger"
	"module-bundler/internal/mark"
	"module-bundler/internal/resolver"
	"module-bundler/internal/scanner"
)

// MsgKind tags a Message the same way §4.D does: a discovered edge, or a
// finished module.
type MsgKind uint8

const (
	MsgDependencyReference MsgKind = iota
	MsgModuleReady
)

// Message is one of the two shapes §4.D's workers send to the graph
// builder.
type Message struct {
	Kind MsgKind

	// MsgDependencyReference
	Importer   string
	Specifier  string
	Resolved   graph.ResolvedId
	IsDynamic  bool

	// MsgModuleReady
	Module *Module
}

// Module bundles a scanned graph.Module with the loader-only bookkeeping
// (its entry name, if it is one) the builder needs once it lands.
type Module struct {
	*graph.Module
	EntryName string // "" unless this module is a configured entry point
}

// Entry names an input key and its entry path as configured; Run resolves
// that path itself, against the project root rather than an importer.
type Entry struct {
	Name string
	Path string
}

// Pool drives the concurrent resolve/load/parse/scan fan-out.
type Pool struct {
	resolver *resolver.Resolver
	box      *mark.Box
	log      logger.Log
	unresolved mark.Mark

	visited sync.Map // resolved id (string) -> struct{}
	ch      chan Message
}

// New creates a pool. unresolved is the bundle-wide mark every scanner
// invocation stamps on free identifier references.
func New(res *resolver.Resolver, box *mark.Box, log logger.Log, unresolved mark.Mark) *Pool {
	return &Pool{resolver: res, box: box, log: log, unresolved: unresolved, ch: make(chan Message, 256)}
}

// Run drives the pool to completion: it resolves and schedules every entry,
// lets workers self-feed their own dependencies, and returns once every
// worker is simultaneously idle and the channel is drained (§4.D
// cancellation: "the pool terminates when all workers are simultaneously
// idle and the queue and channel are drained").
func (p *Pool) Run(entries []Entry, opts *config.Options) ([]Message, error) {
	g, ctx := errgroup.WithContext(context.Background())

	for _, e := range entries {
		e := e
		g.Go(func() error {
			resolved, err := p.resolver.Resolve(e.Path, "")
			if err != nil {
				return &berrors.ResolveError{Specifier: e.Path}
			}
			if resolved.External {
				return &berrors.ResolveError{Specifier: e.Path}
			}
			return p.processModule(ctx, g, resolved.Id, e.Name)
		})
	}

	var msgs []Message
	done := make(chan struct{})
	go func() {
		for msg := range p.ch {
			msgs = append(msgs, msg)
		}
		close(done)
	}()

	err := g.Wait()
	close(p.ch)
	<-done

	if err != nil {
		return nil, err
	}
	return msgs, nil
}

// processModule claims id (at-most-once via the visited set), loads,
// parses and scans it, emits its ModuleReady message, then recursively
// schedules every dependency it discovered so the pool stays saturated.
func (p *Pool) processModule(ctx context.Context, g *errgroup.Group, id string, entryName string) error {
	if _, alreadyClaimed := p.visited.LoadOrStore(id, struct{}{}); alreadyClaimed {
		return nil
	}

	source, err := p.resolver.Load(id)
	if err != nil {
		return err
	}

	prog, err := jsparser.Parse(id, source)
	if err != nil {
		return &berrors.ParseError{Id: id, Message: err.Error()}
	}

	mod, err := scanner.Scan(id, prog, p.box, p.unresolved)
	if err != nil {
		return err
	}
	if entryName != "" {
		mod.IsEntry = true
	}

	// Pre-scan: resolve every static dependency and dynamic import target,
	// pushing each onto the errgroup so the pool stays saturated, and
	// report the edge to the graph builder before this worker returns.
	for _, specifier := range mod.Dependencies {
		resolved, rerr := p.resolver.Resolve(specifier, id)
		if rerr != nil {
			return &berrors.ResolveError{Specifier: specifier, Importer: id}
		}
		mod.ResolvedModuleIds[specifier] = resolved
		p.send(Message{Kind: MsgDependencyReference, Importer: id, Specifier: specifier, Resolved: resolved})
		if !resolved.External {
			resolved := resolved
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				return p.processModule(ctx, g, resolved.Id, "")
			})
		}
	}

	for _, specifier := range mod.DynDependencies {
		resolved, rerr := p.resolver.Resolve(specifier, id)
		if rerr != nil {
			return &berrors.ResolveError{Specifier: specifier, Importer: id}
		}
		mod.ResolvedModuleIds[specifier] = resolved
		p.send(Message{Kind: MsgDependencyReference, Importer: id, Specifier: specifier, Resolved: resolved, IsDynamic: true})
		if !resolved.External {
			resolved := resolved
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return nil
				default:
				}
				return p.processModule(ctx, g, resolved.Id, "")
			})
		}
	}

	p.send(Message{Kind: MsgModuleReady, Module: &Module{Module: mod, EntryName: entryName}})
	return nil
}

func (p *Pool) send(m Message) { p.ch <- m }
