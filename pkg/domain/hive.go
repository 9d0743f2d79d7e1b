package domain

// StoreHive is a physical store location that holds sections.
type StoreHive struct {
	Base
	Address string `json:"address"`
}

// StoreHiveSection is a section inside a store hive.
type StoreHiveSection struct {
	Base
	StoreHiveID int `json:"store_hive_id"`
}

// CloneHive returns a detached copy.
func CloneHive(h *StoreHive) *StoreHive {
	cp := *h
	return &cp
}

// CloneHiveSection returns a detached copy.
func CloneHiveSection(s *StoreHiveSection) *StoreHiveSection {
	cp := *s
	return &cp
}
