package schema

import (
	"fmt"
	"slices"

	"github.com/aretw0/slotfill/pkg/domain"
)

// Version is the literal version tag every template must carry.
const Version = "slotfill/v1"

// EscalationSize is the exact number of escalation prompt keys per list.
const EscalationSize = domain.MaxEscalation

// Validate checks a raw template document and returns every violation found.
func Validate(raw map[string]any) Issues {
	var issues Issues

	if v, ok := raw["version"].(string); !ok || v != Version {
		issues.add("version", "must be %q", Version)
	}

	list, ok := raw["nodes"].([]any)
	if !ok || len(list) == 0 {
		issues.add("nodes", "must be a non-empty list")
		return issues
	}

	seen := make(map[string]bool)
	for i, item := range list {
		path := fmt.Sprintf("nodes[%d]", i)
		node, ok := asMap(item)
		if !ok {
			issues.add(path, "must be an object")
			continue
		}
		validateNode(&issues, path, node, seen)
	}
	return issues
}

func validateNode(issues *Issues, path string, node map[string]any, seen map[string]bool) {
	id := requireString(issues, path+".id", node["id"])
	if id != "" {
		if seen[id] {
			issues.add(path+".id", "duplicate id %q", id)
		}
		seen[id] = true
	}
	requireString(issues, path+".label", node["label"])

	kind := requireString(issues, path+".kind", node["kind"])
	if kind != "" && !domain.Kind(kind).IsKnown() {
		issues.add(path+".kind", "unknown kind %q", kind)
	}

	typ := requireString(issues, path+".type", node["type"])
	isMain := typ == string(domain.NodeMain)
	if typ != "" && !isMain && typ != string(domain.NodeSub) {
		issues.add(path+".type", "must be %q or %q", domain.NodeMain, domain.NodeSub)
	}

	if subs, present := node["subs"]; present {
		switch {
		case !isMain:
			issues.add(path+".subs", "only main nodes may own subs")
		default:
			list, ok := subs.([]any)
			if !ok {
				issues.add(path+".subs", "must be a list of ids")
				break
			}
			for j, s := range list {
				if str, ok := s.(string); !ok || str == "" {
					issues.add(fmt.Sprintf("%s.subs[%d]", path, j), "must be a non-empty id")
				}
			}
		}
	}

	if req, present := node["required"]; present {
		if _, ok := req.(bool); !ok {
			issues.add(path+".required", "must be a boolean")
		}
	}

	steps, ok := asMap(node["steps"])
	if !ok {
		issues.add(path+".steps", "is required")
		return
	}

	ask, ok := asMap(steps["ask"])
	if !ok {
		issues.add(path+".steps.ask", "is required")
	} else {
		validateEscalation(issues, path+".steps.ask", ask, askLists...)
	}

	for _, step := range []struct {
		key      string
		required []string
	}{{"confirm", confirmLists}, {"notConfirmed", nil}} {
		key := step.key
		raw, present := steps[key]
		if !present {
			continue
		}
		p := path + ".steps." + key
		if !isMain {
			issues.add(p, "only main nodes may declare %s", key)
			continue
		}
		esc, ok := asMap(raw)
		if !ok {
			issues.add(p, "must be an object")
			continue
		}
		validateEscalation(issues, p, esc, step.required...)
	}

	if raw, present := steps["success"]; present {
		p := path + ".steps.success"
		if !isMain {
			issues.add(p, "only main nodes may declare success")
		} else if list, ok := raw.([]any); !ok || len(list) == 0 {
			issues.add(p, "must be a non-empty list")
		} else {
			for j, s := range list {
				if str, ok := s.(string); !ok || str == "" {
					issues.add(fmt.Sprintf("%s[%d]", p, j), "must be a non-empty key")
				}
			}
		}
	}
}

var (
	askLists     = []string{"noInput", "noMatch"}
	confirmLists = []string{"noInput", "noMatch", "notConfirmed"}
)

// validateEscalation checks base and the escalation lists. Lists named in required must be
// present; every list that is present must hold exactly EscalationSize keys.
func validateEscalation(issues *Issues, path string, esc map[string]any, required ...string) {
	requireString(issues, path+".base", esc["base"])

	for _, key := range confirmLists {
		raw, present := esc[key]
		if !present {
			if slices.Contains(required, key) {
				issues.add(path+"."+key, "is required")
			}
			continue
		}
		list, ok := raw.([]any)
		if !ok || len(list) != EscalationSize {
			issues.add(path+"."+key, "must be a list of exactly %d keys", EscalationSize)
			continue
		}
		for j, s := range list {
			if str, ok := s.(string); !ok || str == "" {
				issues.add(fmt.Sprintf("%s.%s[%d]", path, key, j), "must be a non-empty key")
			}
		}
	}
}

func requireString(issues *Issues, path string, v any) string {
	s, ok := v.(string)
	if !ok || s == "" {
		issues.add(path, "is required")
		return ""
	}
	return s
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
