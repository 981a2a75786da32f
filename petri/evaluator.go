package petri

import "github.com/pflow-xyz/stpn/errs"

// Fire computes the successor PetriStateFeature produced by firing the
// named transition in prev, following the nine-step algorithm of
// spec.md §4.2.
func (n *PetriNet) Fire(prev *PetriStateFeature, fired string) (*PetriStateFeature, error) {
	if !n.HasTransition(fired) {
		return nil, errs.NewValidationError(fired, "unknown transition")
	}

	// Step 1: remove tokens (precondition multiplicities, PlaceFlusher zeros).
	tmp := prev.Marking.Clone()
	for _, arc := range n.pre[fired] {
		if arc.Inhibitor {
			continue
		}
		if err := tmp.RemoveTokens(arc.Place, arc.Multiplicity); err != nil {
			return nil, err
		}
	}
	if f, ok := n.Features(fired).Get(TagPlaceFlusher); ok {
		for _, place := range f.(PlaceFlusher).Places {
			tmp.SetTokens(place, 0)
		}
	}

	// Step 2: add tokens (postcondition multiplicities).
	next := tmp.Clone()
	for _, arc := range n.post[fired] {
		next.AddTokens(arc.Place, arc.Multiplicity)
	}

	// Step 3: post-updater, evaluated against the PRE-firing marking, applied
	// as a simultaneous bulk assignment.
	if f, ok := n.Features(fired).Get(TagPostUpdater); ok {
		pu := f.(PostUpdater)
		assigned, err := pu.Apply(n.Bindings(prev.Marking))
		if err != nil {
			return nil, err
		}
		for place, value := range assigned {
			next.SetTokens(place, value)
		}
	}

	// Step 4: enabled sets at each marking stage.
	prevEnabled, err := n.EnabledSet(prev.Marking)
	if err != nil {
		return nil, err
	}
	tmpEnabled, err := n.EnabledSet(tmp)
	if err != nil {
		return nil, err
	}
	nextEnabled, err := n.EnabledSet(next)
	if err != nil {
		return nil, err
	}

	// Step 5: reset-set members are considered disabled during the
	// intermediate step, forcing their reclassification as newly-enabled.
	if f, ok := n.Features(fired).Get(TagResetSet); ok {
		for _, peer := range f.(ResetSet).Peers {
			if !n.HasTransition(peer) {
				return nil, errs.NewDomainError("reset set of %q refers to unknown transition %q", fired, peer)
			}
			delete(tmpEnabled, peer)
		}
	}

	// Step 6: persistent = nextEnabled ∩ tmpEnabled ∩ prevEnabled \ {fired}.
	persistent := make(map[string]struct{})
	for t := range nextEnabled {
		if _, inTmp := tmpEnabled[t]; !inTmp {
			continue
		}
		if _, inPrev := prevEnabled[t]; !inPrev {
			continue
		}
		if t == fired {
			continue
		}
		persistent[t] = struct{}{}
	}

	// Step 7: newlyEnabled = nextEnabled \ persistent.
	newlyEnabled := make(map[string]struct{})
	for t := range nextEnabled {
		if _, isPersistent := persistent[t]; !isPersistent {
			newlyEnabled[t] = struct{}{}
		}
	}

	// Step 8: disabled = ((prevEnabled \ nextEnabled) ∪ (prevEnabled ∩ newlyEnabled)) \ {fired}.
	disabled := make(map[string]struct{})
	for t := range prevEnabled {
		if t == fired {
			continue
		}
		_, stillEnabled := nextEnabled[t]
		_, isNewlyEnabled := newlyEnabled[t]
		if !stillEnabled || isNewlyEnabled {
			disabled[t] = struct{}{}
		}
	}

	return &PetriStateFeature{
		Marking:           next,
		Enabled:           nextEnabled,
		NewlyEnabled:       newlyEnabled,
		Persistent:        persistent,
		Disabled:          disabled,
		CheckNewlyEnabled: prev.CheckNewlyEnabled,
	}, nil
}
