// Package gorm provides GORM model definitions and the SQL-backed key-value store
package gorm

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentModel is one stored JSON document
type DocumentModel struct {
	Key       string         `gorm:"column:doc_key;type:varchar(255);primaryKey"`
	Value     datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// TableName specifies the table name
func (DocumentModel) TableName() string {
	return "kv_documents"
}

// Models lists every model AutoMigrate should create
func Models() []interface{} {
	return []interface{}{&DocumentModel{}}
}
