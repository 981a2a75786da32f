package petri

// InitialState builds the PetriStateFeature for marking m0, following
// spec.md §4.5: enabled = enabled(m0), newlyEnabled = enabled, persistent
// and disabled start empty.
func (n *PetriNet) InitialState(m0 Marking, checkNewlyEnabled bool) (*PetriStateFeature, error) {
	enabled, err := n.EnabledSet(m0)
	if err != nil {
		return nil, err
	}
	newlyEnabled := make(map[string]struct{}, len(enabled))
	for t := range enabled {
		newlyEnabled[t] = struct{}{}
	}
	return &PetriStateFeature{
		Marking:           m0.Clone(),
		Enabled:           enabled,
		NewlyEnabled:      newlyEnabled,
		Persistent:        make(map[string]struct{}),
		Disabled:          make(map[string]struct{}),
		CheckNewlyEnabled: checkNewlyEnabled,
	}, nil
}
