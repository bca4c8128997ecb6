package secret

// Merge resolves a raw response into a Map.
//
// Direct secrets are inserted first; a key repeated among them keeps its last
// value. Import blocks are then walked in listed order, and a record is
// inserted only when its key is not yet present, so direct secrets beat
// imports and an earlier import block beats a later one. Records with an
// absent or empty key, or an absent value, are skipped. A nil response yields
// an empty Map.
func Merge(resp *RawResponse) Map {
	out := make(map[string]string)
	if resp == nil {
		return Map{m: out}
	}

	if resp.Secrets != nil {
		for _, r := range *resp.Secrets {
			if k, v, ok := r.entry(); ok {
				out[k] = v
			}
		}
	}

	for _, block := range resp.Imports {
		for _, r := range block.Secrets {
			k, v, ok := r.entry()
			if !ok {
				continue
			}
			if _, exists := out[k]; exists {
				continue
			}
			out[k] = v
		}
	}

	return Map{m: out}
}
