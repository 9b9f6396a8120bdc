package inspect

import (
	"github.com/chris-regnier/jinspect/internal/hierarchy"
	"github.com/chris-regnier/jinspect/internal/tree"
	"github.com/chris-regnier/jinspect/internal/walk"
)

// fieldUsage records how one field is reached from a class body.
type fieldUsage struct {
	synced, unsynced           int
	firstSynced, firstUnsynced *tree.Node
}

func (u *fieldUsage) mixed() bool { return u.synced > 0 && u.unsynced > 0 }

// accessRecorder walks one class body and records, for every field access it
// can resolve, whether the access happens while a monitor is held.
//
// The context is a stack that starts false. Synchronized methods and
// constructors and the body of a synchronized block push true. Lambdas and
// anonymous class bodies push false: they run later, on whatever thread calls
// them. Named nested classes are skipped.
type accessRecorder struct {
	resolver *hierarchy.Resolver
	root     *tree.Node
	held     []bool
	usage    map[*tree.Node]*fieldUsage
}

func newAccessRecorder(r *hierarchy.Resolver, class *tree.Node) *accessRecorder {
	return &accessRecorder{
		resolver: r,
		root:     class,
		held:     []bool{false},
		usage:    make(map[*tree.Node]*fieldUsage),
	}
}

func (a *accessRecorder) synchronized() bool { return a.held[len(a.held)-1] }

// frame reports whether n opens a context frame and the value it pushes.
func (a *accessRecorder) frame(n *tree.Node) (bool, bool) {
	if n == a.root {
		return false, false
	}
	switch n.Kind {
	case tree.KindAnonymousClass, tree.KindLambda:
		return false, true
	case tree.KindMethod, tree.KindConstructor:
		return n.Has(tree.ModSynchronized) || a.synchronized(), true
	case tree.KindBlock:
		if p := n.Parent(); p != nil && p.Kind == tree.KindSynchronizedBlock {
			return true, true
		}
	}
	return false, false
}

func (a *accessRecorder) Visit(n *tree.Node) walk.Action {
	if n != a.root && n.Kind.IsClassLike() && n.Kind != tree.KindAnonymousClass {
		return walk.Prune
	}
	if v, ok := a.frame(n); ok {
		a.held = append(a.held, v)
	}
	if n.Kind == tree.KindAccess {
		if f, ok := a.resolver.ResolveField(n); ok {
			a.record(f, n)
		}
	}
	return walk.Continue
}

func (a *accessRecorder) Leave(n *tree.Node) {
	if n == a.root {
		return
	}
	switch n.Kind {
	case tree.KindAnonymousClass, tree.KindLambda, tree.KindMethod, tree.KindConstructor:
		a.held = a.held[:len(a.held)-1]
	case tree.KindBlock:
		if p := n.Parent(); p != nil && p.Kind == tree.KindSynchronizedBlock {
			a.held = a.held[:len(a.held)-1]
		}
	}
}

func (a *accessRecorder) record(field, site *tree.Node) {
	u := a.usage[field]
	if u == nil {
		u = &fieldUsage{}
		a.usage[field] = u
	}
	if a.synchronized() {
		u.synced++
		if u.firstSynced == nil {
			u.firstSynced = site
		}
		return
	}
	u.unsynced++
	if u.firstUnsynced == nil {
		u.firstUnsynced = site
	}
}
