package domain

// IsSaturated reports whether every sub id of node holds a present value in memory.
// A node without subs is saturated when its own value is present.
func IsSaturated(node Node, memory Memory) bool {
	if len(node.Subs) == 0 {
		return memory.Present(node.ID)
	}
	for _, id := range node.Subs {
		if !memory.Present(id) {
			return false
		}
	}
	return true
}

// MissingRequiredSubs returns the ids of the required, resolvable subs of main that have no
// present value, in declaration order.
func MissingRequiredSubs(plan Plan, main Node, memory Memory) []string {
	var missing []string
	for _, sub := range plan.Subs(main) {
		if sub.IsRequired() && !memory.Present(sub.ID) {
			missing = append(missing, sub.ID)
		}
	}
	return missing
}

// AnySubPresent reports whether at least one resolvable sub of main holds a value.
func AnySubPresent(plan Plan, main Node, memory Memory) bool {
	for _, sub := range plan.Subs(main) {
		if memory.Present(sub.ID) {
			return true
		}
	}
	return false
}
