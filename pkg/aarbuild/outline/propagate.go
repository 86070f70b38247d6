package outline

// Propagate recomputes the needed flags bottom-up: a level-4 node is needed
// when any of its leaves contributes, a level-3 node when any level-4 child
// is needed. Flags are recomputed from scratch, never carried across templates.
func Propagate(t *Template) {
	for _, section := range t.Roots {
		section.Needed = false
		for _, sub := range section.Children {
			sub.Needed = false
			for _, leaf := range sub.Children {
				leaf.Needed = leaf.Contributes()
				if leaf.Needed {
					sub.Needed = true
				}
			}
			if sub.Needed {
				section.Needed = true
			}
		}
	}
}
