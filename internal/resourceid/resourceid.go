package resourceid

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/runtime/schema"
)

// NamespaceKind is the kind whose simple name is taken from its namespace segment.
const NamespaceKind = "Namespace"

// ID is a parsed resource identifier.
type ID struct {
	Raw        string
	APIVersion string
	Kind       string
	Namespace  string
	Name       string
}

// Parse splits a raw identifier into its segments. The returned ID is always
// usable; the error only reports that the identifier did not follow one of the
// recognised shapes, in which case the whole identifier becomes the name.
func Parse(raw string) (ID, error) {
	id := ID{Raw: raw}
	if raw == "" {
		return id, fmt.Errorf("identifier cannot be empty")
	}

	parts := strings.Split(raw, ":")
	switch len(parts) {
	case 4:
		id.APIVersion, id.Kind, id.Namespace, id.Name = parts[0], parts[1], parts[2], parts[3]
	case 3:
		id.APIVersion, id.Kind = parts[0], parts[1]
		if id.Kind == NamespaceKind {
			id.Namespace = parts[2]
		} else {
			id.Name = parts[2]
		}
	case 2:
		// `group/version/Kind:name` or `prefix/Kind:name`
		head := parts[0]
		if i := strings.LastIndex(head, "/"); i >= 0 {
			id.APIVersion, id.Kind = head[:i], head[i+1:]
		} else {
			id.Kind = head
		}
		if id.Kind == NamespaceKind {
			id.Namespace = parts[1]
		} else {
			id.Name = parts[1]
		}
	default:
		id.Name = raw
		return id, fmt.Errorf("identifier %q has %d segments, want 2 to 4", raw, len(parts))
	}

	if id.Kind == "" {
		return id, fmt.Errorf("identifier %q has an empty kind segment", raw)
	}
	return id, nil
}

// String returns the identifier the ID was parsed from.
func (id ID) String() string {
	return id.Raw
}

// GroupVersionKind resolves the apiVersion segment into a Kubernetes GVK.
func (id ID) GroupVersionKind() (schema.GroupVersionKind, error) {
	gv, err := schema.ParseGroupVersion(id.APIVersion)
	if err != nil {
		return schema.GroupVersionKind{}, fmt.Errorf("invalid apiVersion in %q: %w", id.Raw, err)
	}
	return gv.WithKind(id.Kind), nil
}

// SimpleName is the short name of the resource. Namespace resources are named
// after the namespace they declare.
func (id ID) SimpleName() string {
	if id.Kind == NamespaceKind && id.Namespace != "" {
		return id.Namespace
	}
	return id.Name
}

// DisplayName is `kind/simpleName`, the label used for rendering and for
// ordering resources within a graph level.
func (id ID) DisplayName() string {
	if id.Kind == "" {
		return id.SimpleName()
	}
	return id.Kind + "/" + id.SimpleName()
}
