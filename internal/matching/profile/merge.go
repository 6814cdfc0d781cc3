package profile

// DeepCopy clones a decoded JSON tree. Engine stages never mutate their
// inputs, so every transformation starts from a copy.
func DeepCopy(obj map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(obj))
	for k, v := range obj {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return DeepCopy(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// DeepMerge overlays updates onto base, recursing into nested maps and
// replacing everything else wholesale. Neither input is mutated.
func DeepMerge(base, updates map[string]interface{}) map[string]interface{} {
	out := DeepCopy(base)
	for k, v := range updates {
		if existing, ok := out[k].(map[string]interface{}); ok {
			if update, ok := v.(map[string]interface{}); ok {
				out[k] = DeepMerge(existing, update)
				continue
			}
		}
		out[k] = deepCopyValue(v)
	}
	return out
}
