package avro

import "strings"

// name represents a schema's type name together with the namespace it was
// declared in. Two names are the same type iff their fullName values match.
type name struct {
	n         string
	namespace string
}

// fullName returns the fully qualified name: namespace and simple name
// joined with a dot, unless the simple name is already qualified (contains
// a dot) or the namespace is empty.
func (n *name) fullName() string {
	if n == nil {
		return ""
	}
	if n.namespace == "" || strings.ContainsRune(n.n, '.') {
		return n.n
	}
	return n.namespace + "." + n.n
}

func (n *name) String() string {
	return n.fullName()
}

// qualify composes an enclosing namespace with a simple name. A name that
// already contains a '.' is treated as already qualified.
func qualify(enclosingNamespace, simpleName string) (qualifiedName, namespace string) {
	if strings.ContainsRune(simpleName, '.') {
		idx := strings.LastIndexByte(simpleName, '.')
		return simpleName, simpleName[:idx]
	}
	if enclosingNamespace == "" {
		return simpleName, ""
	}
	return enclosingNamespace + "." + simpleName, enclosingNamespace
}

// splitName extracts the simple name portion from a fully qualified name.
func splitName(fullName string) string {
	idx := strings.LastIndexByte(fullName, '.')
	if idx < 0 {
		return fullName
	}
	return fullName[idx+1:]
}
