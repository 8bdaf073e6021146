package loader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"module-bundler/internal/config"
	"module-bundler/internal/fs"
	"module-bundler/internal/logger"
	"module-bundler/internal/mark"
	"module-bundler/internal/resolver"
)

func newTestPool(files map[string]string) *Pool {
	mockFS := fs.NewMockFS(files)
	opts := config.DefaultOptions()
	res := resolver.New(mockFS, "/proj", &opts)
	box := mark.NewBox()
	return New(res, box, logger.NewLog(), box.New("<unresolved>"))
}

func moduleReadyIds(msgs []Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Kind == MsgModuleReady {
			out = append(out, m.Module.Id)
		}
	}
	return out
}

func TestRunScansSingleEntryWithNoDependencies(t *testing.T) {
	p := newTestPool(map[string]string{"/proj/entry.js": "const x = 1;"})
	msgs, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.NoError(t, err)
	ids := moduleReadyIds(msgs)
	require.Equal(t, []string{"/proj/entry.js"}, ids)
	require.Equal(t, "main", msgs[len(msgs)-1].Module.EntryName)
}

func TestRunFollowsStaticImportChain(t *testing.T) {
	p := newTestPool(map[string]string{
		"/proj/entry.js": `import { x } from "./a.js"; x;`,
		"/proj/a.js":     `export const x = 1;`,
	})
	msgs, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.NoError(t, err)
	ids := moduleReadyIds(msgs)
	require.ElementsMatch(t, []string{"/proj/entry.js", "/proj/a.js"}, ids)
}

func TestRunFollowsDynamicImportChain(t *testing.T) {
	p := newTestPool(map[string]string{
		"/proj/entry.js": `const p = import("./lazy.js");`,
		"/proj/lazy.js":  `export const y = 2;`,
	})
	msgs, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.NoError(t, err)
	ids := moduleReadyIds(msgs)
	require.ElementsMatch(t, []string{"/proj/entry.js", "/proj/lazy.js"}, ids)

	var sawDynamicEdge bool
	for _, m := range msgs {
		if m.Kind == MsgDependencyReference && m.IsDynamic {
			sawDynamicEdge = true
			require.Equal(t, "./lazy.js", m.Specifier)
		}
	}
	require.True(t, sawDynamicEdge)
}

func TestRunDedupesDiamondDependency(t *testing.T) {
	p := newTestPool(map[string]string{
		"/proj/entry.js": `import "./a.js"; import "./b.js";`,
		"/proj/a.js":     `import "./shared.js";`,
		"/proj/b.js":     `import "./shared.js";`,
		"/proj/shared.js": `const x = 1;`,
	})
	msgs, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.NoError(t, err)
	ids := moduleReadyIds(msgs)
	require.Len(t, ids, 4)

	count := 0
	for _, id := range ids {
		if id == "/proj/shared.js" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestRunStopsOnLoadError(t *testing.T) {
	p := newTestPool(map[string]string{"/proj/entry.js": `import "./missing.js";`})
	_, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.Error(t, err)
}

func TestRunStopsOnParseError(t *testing.T) {
	p := newTestPool(map[string]string{"/proj/entry.js": `let 1 = 2;`})
	_, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.Error(t, err)
}

func TestRunExternalDependencyIsNotScheduled(t *testing.T) {
	p := newTestPool(map[string]string{"/proj/entry.js": `import x from "react";`})
	msgs, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.NoError(t, err)
	ids := moduleReadyIds(msgs)
	require.Equal(t, []string{"/proj/entry.js"}, ids)

	var sawExternalEdge bool
	for _, m := range msgs {
		if m.Kind == MsgDependencyReference && m.Specifier == "react" {
			sawExternalEdge = true
			require.True(t, m.Resolved.External)
		}
	}
	require.True(t, sawExternalEdge)
}

func TestRunMarksEntryOnlyOnTheEntryModule(t *testing.T) {
	p := newTestPool(map[string]string{
		"/proj/entry.js": `import "./a.js";`,
		"/proj/a.js":     `const x = 1;`,
	})
	msgs, err := p.Run([]Entry{{Name: "main", Path: "entry"}}, &config.Options{})
	require.NoError(t, err)
	for _, m := range msgs {
		if m.Kind != MsgModuleReady {
			continue
		}
		if m.Module.Id == "/proj/entry.js" {
			require.True(t, m.Module.IsEntry)
		} else {
			require.False(t, m.Module.IsEntry)
		}
	}
}
