package domain

// AssociationKind kind of dependent row keyed to a content record
type AssociationKind string

const (
	KindModFeature AssociationKind = "mod_feature"
	KindScreenshot AssociationKind = "screenshot"
	KindTag        AssociationKind = "tag"
)

// Ordered kinds store a position equal to the item index
func (k AssociationKind) Ordered() bool {
	return k == KindModFeature || k == KindScreenshot
}

// ContentAssociation mod features, screenshots and tags share one shape.
// The set for (content_type, content_id, kind) is replaced wholesale on every save.
type ContentAssociation struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentType ContentType     `gorm:"column:content_type;size:20;not null;index:idx_assoc_owner,priority:1" json:"content_type"`
	ContentID   string          `gorm:"column:content_id;type:char(36);not null;index:idx_assoc_owner,priority:2" json:"content_id"`
	Kind        AssociationKind `gorm:"column:kind;size:20;not null;index:idx_assoc_owner,priority:3" json:"kind"`
	Payload     string          `gorm:"column:payload;type:text" json:"payload"`
	Position    *int            `gorm:"column:position" json:"position,omitempty"`
}

func (ContentAssociation) TableName() string { return "content_associations" }
