package engine

import (
	"sort"
	"strings"

	"github.com/Ayush1216/Frictionless/internal/matching/profile"
)

// SetByDottedPath writes value into root at a dotted key path, creating
// intermediate maps as needed. Non-map intermediates are replaced.
func SetByDottedPath(root map[string]interface{}, dotted string, value interface{}) {
	parts := []string{}
	for _, p := range strings.Split(dotted, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return
	}
	cur := root
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// ApplyCompletedTaskOverrides applies field updates from completed tasks to
// fresh copies of both profile documents. The payload may be a bare task
// list or a document with a "tasks" key. Paths without a startup/investor
// prefix default to the startup document. Returns the new documents and the
// list of applied paths.
func ApplyCompletedTaskOverrides(startupObj, investorObj map[string]interface{}, payload interface{}) (map[string]interface{}, map[string]interface{}, []string) {
	var tasks []interface{}
	switch v := payload.(type) {
	case []interface{}:
		tasks = v
	case map[string]interface{}:
		if list, ok := v["tasks"].([]interface{}); ok {
			tasks = list
		}
	}
	if len(tasks) == 0 {
		return startupObj, investorObj, nil
	}

	startupNew := profile.DeepCopy(startupObj)
	investorNew := profile.DeepCopy(investorObj)
	applied := []string{}

	for _, raw := range tasks {
		t, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		done := profile.ToBool(t["task_done"])
		if done == nil || !*done {
			continue
		}
		updates, ok := t["field_updates"].(map[string]interface{})
		if !ok {
			continue
		}
		paths := make([]string, 0, len(updates))
		for path := range updates {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			val := updates[path]
			p := strings.TrimSpace(path)
			switch {
			case strings.HasPrefix(p, "startup."):
				SetByDottedPath(startupNew, p, val)
			case strings.HasPrefix(p, "investor."):
				SetByDottedPath(investorNew, p, val)
			default:
				SetByDottedPath(startupNew, p, val)
			}
			applied = append(applied, p)
		}
	}

	return startupNew, investorNew, applied
}
