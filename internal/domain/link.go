package domain

import "time"

// Link records that a source item (or collection) has been copied to a
// target library under TargetKey. (SourceLibURI, SourceKey, TargetLibURI)
// is the natural key.
type Link struct {
	SourceLibURI string    `json:"sourceLibUri" yaml:"source_lib_uri"`
	SourceKey    string    `json:"sourceKey" yaml:"source_key"`
	TargetLibURI string    `json:"targetLibUri" yaml:"target_lib_uri"`
	TargetKey    string    `json:"targetKey" yaml:"target_key"`
	CreatedAt    time.Time `json:"createdAt" yaml:"created_at"`
}

// LinkFilter narrows a link listing. Empty fields match everything.
type LinkFilter struct {
	SourceLibURI string
	TargetLibURI string
	SourceKey    string
}
