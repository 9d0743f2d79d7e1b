// Package dto holds the plain data-transfer views and update requests exposed
// by the domain services. DTOs never reference entity sets or queries.
package dto

import "time"

// Hive is the detailed view of a store hive.
type Hive struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	IsDeleted   bool      `json:"is_deleted"`
	LastUpdated time.Time `json:"last_updated"`
}

// HiveListItem is a row of the hive list.
type HiveListItem struct {
	ID               int    `json:"id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	IsDeleted        bool   `json:"is_deleted"`
	HiveSectionCount int    `json:"hive_section_count"`
}

// UpdateHiveRequest carries the mutable hive fields for create and update.
type UpdateHiveRequest struct {
	Code    string `json:"code" yaml:"code"`
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// HiveSection is the detailed view of a hive section.
type HiveSection struct {
	ID          int       `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	StoreHiveID int       `json:"store_hive_id"`
	IsDeleted   bool      `json:"is_deleted"`
	LastUpdated time.Time `json:"last_updated"`
}

// HiveSectionListItem is a row of a hive section list.
type HiveSectionListItem struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	StoreHiveID int    `json:"store_hive_id"`
	IsDeleted   bool   `json:"is_deleted"`
}

// UpdateHiveSectionRequest carries the mutable section fields.
type UpdateHiveSectionRequest struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	StoreHiveID int    `json:"store_hive_id" yaml:"store_hive_id"`
}
