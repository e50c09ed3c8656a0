// Package mermaid renders a startup report as a Mermaid flowchart.
package mermaid

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cleitonmarx/nowapi/internal/introspection"
)

type nodeKind int

const (
	kindConfig nodeKind = iota
	kindDependency
	kindComponent
	kindRunnable
	kindApp
)

var classDefs = map[nodeKind]string{
	kindConfig:     "config fill:#e8f5e9,stroke:#388e3c,color:#222222",
	kindDependency: "dep fill:#e0f7fa,stroke:#00838f,color:#222222",
	kindComponent:  "component fill:#fff3e0,stroke:#f57c00,color:#222222",
	kindRunnable:   "runnable fill:#e3e0fc,stroke:#6c47a6,color:#222222",
	kindApp:        "app fill:#0525f5,stroke:black,color:#ffffff,font-weight:bold",
}

type node struct {
	id    string
	label string
	kind  nodeKind
}

type edge struct {
	from  string
	to    string
	arrow string
}

type graph struct {
	nodes map[string]node
	edges map[edge]struct{}
}

func newGraph() *graph {
	return &graph{nodes: map[string]node{}, edges: map[edge]struct{}{}}
}

// add keeps the most specific kind when the same id shows up twice,
// e.g. a component that is also hosted as a runnable.
func (g *graph) add(id, label string, kind nodeKind) string {
	id = sanitizeID(id)
	if existing, ok := g.nodes[id]; ok && existing.kind >= kind {
		return id
	}
	g.nodes[id] = node{id: id, label: label, kind: kind}
	return id
}

func (g *graph) link(from, arrow, to string) {
	g.edges[edge{from: from, to: to, arrow: arrow}] = struct{}{}
}

// Graph renders r top-down: initializers register dependencies (--o),
// dependencies and config keys flow into the components that read them (-.->)
// and runnables hang off the app node (---).
func Graph(r introspection.Report, appName string) string {
	g := newGraph()
	app := g.add(appName+"App", appName, kindApp)

	for _, info := range r.Runners {
		id := g.add(info.Type, info.Type+"<br/>runnable", kindRunnable)
		g.link(id, "---", app)
	}

	for _, ev := range r.Deps {
		label := ev.Type
		if ev.Impl != "" && ev.Impl != ev.Type {
			label += "<br/>impl: " + ev.Impl
		}
		dep := g.add("dep "+ev.Type, label, kindDependency)

		component := componentName(ev.Caller, ev.Component)
		if component == "" {
			continue
		}
		cid := g.add(component, component, kindComponent)
		switch ev.Kind {
		case introspection.DepRegistered:
			g.link(cid, "--o", dep)
		case introspection.DepResolved:
			g.link(dep, "-.->", cid)
		}
	}

	for _, c := range r.Configs {
		label := c.Key
		switch {
		case c.UsedDefault:
			label += "<br/>default"
		case c.Provider != "":
			label += "<br/>from: " + c.Provider
		}
		key := g.add("cfg "+c.Key, label, kindConfig)

		component := componentName(c.Caller, c.Component)
		if component == "" {
			component = "unknown caller"
		}
		g.link(key, "-.->", g.add(component, component, kindComponent))
	}

	return g.render()
}

// componentName prefers the recorded call site and falls back to the wired component type.
func componentName(caller introspection.Caller, component string) string {
	if caller.Func != "" {
		return caller.Func
	}
	return component
}

func (g *graph) render() string {
	nodes := make([]node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].kind != nodes[j].kind {
			return nodes[i].kind < nodes[j].kind
		}
		return nodes[i].id < nodes[j].id
	})

	edges := make([]edge, 0, len(g.edges))
	for e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})

	var b strings.Builder
	b.WriteString("graph TD\n")
	for _, n := range nodes {
		fmt.Fprintf(&b, "    %s[\"%s\"]\n", n.id, n.label)
	}
	for _, e := range edges {
		fmt.Fprintf(&b, "    %s %s %s\n", e.from, e.arrow, e.to)
	}
	for kind := kindConfig; kind <= kindApp; kind++ {
		fmt.Fprintf(&b, "    classDef %s\n", classDefs[kind])
	}
	for _, n := range nodes {
		fmt.Fprintf(&b, "    class %s %s;\n", n.id, strings.Fields(classDefs[n.kind])[0])
	}
	return b.String()
}

var idReplacer = strings.NewReplacer(
	" ", "_",
	".", "_",
	"(", "_",
	")", "_",
	":", "_",
	"*", "ptr_",
	",", "_",
	"[", "_",
	"]", "_",
	"-", "_",
	"/", "_",
)

func sanitizeID(s string) string {
	return idReplacer.Replace(s)
}
