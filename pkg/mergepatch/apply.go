package mergepatch

// Apply returns the result of merging patch into target per RFC 7396:
//
//   - an object patch is merged key by key into target (a non-object target
//     is treated as an empty object)
//   - a null member value removes that key from the result
//   - any other member value is merged recursively, which for non-objects
//     means replacement
//   - a non-object patch replaces target entirely
//
// Neither argument is modified.
func Apply(target, patch Node) Node {
	if patch.kind != Object {
		return patch
	}

	var members []Member
	if target.kind == Object {
		members = make([]Member, 0, len(target.members)+len(patch.members))
		members = append(members, target.members...)
	} else {
		members = make([]Member, 0, len(patch.members))
	}

	for _, p := range patch.members {
		if p.Value.kind == Null {
			members = removeMember(members, p.Key)
			continue
		}
		current, _ := lookup(members, p.Key)
		members = setMember(members, p.Key, Apply(current, p.Value))
	}
	return Node{kind: Object, members: members}
}

func lookup(members []Member, key string) (Node, bool) {
	for _, m := range members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Node{}, false
}

func removeMember(members []Member, key string) []Member {
	for i := range members {
		if members[i].Key == key {
			return append(members[:i:i], members[i+1:]...)
		}
	}
	return members
}
