package tagcache

import "fmt"

// Kind identifies the scope level of a tag.
type Kind uint8

const (
	// KindGlobal covers every cache entry of an entity class.
	KindGlobal Kind = iota
	// KindOrg covers entries of an entity class belonging to one organization.
	KindOrg
	// KindID covers entries of a single entity.
	KindID
)

// Tag is an invalidation scope attached to cached values. Tags form a closed
// hierarchy: Global(class) supersedes OrgScoped(class, *) and
// IDScoped(class, *). Construct tags with Global, OrgScoped, or IDScoped;
// the zero value is not a valid tag.
type Tag struct {
	class string
	scope string
	kind  Kind
}

// Global returns the tag covering every entry of an entity class.
func Global(class string) Tag {
	return Tag{kind: KindGlobal, class: class}
}

// OrgScoped returns the tag covering entries of class owned by one organization.
func OrgScoped(class, orgID string) Tag {
	return Tag{kind: KindOrg, class: class, scope: orgID}
}

// IDScoped returns the tag covering the entries of a single entity.
func IDScoped(class, id string) Tag {
	return Tag{kind: KindID, class: class, scope: id}
}

// Kind returns the scope level of the tag.
func (t Tag) Kind() Kind { return t.kind }

// Class returns the entity class the tag belongs to.
func (t Tag) Class() string { return t.class }

// String returns the canonical string form used as the epoch-table key.
func (t Tag) String() string {
	switch t.kind {
	case KindOrg:
		return fmt.Sprintf("org:%s:%s", t.class, t.scope)
	case KindID:
		return fmt.Sprintf("id:%s:%s", t.class, t.scope)
	default:
		return "global:" + t.class
	}
}
