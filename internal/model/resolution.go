package model

import "time"

// ResolutionLog is the operational record of one resolution
type ResolutionLog struct {
	ID         string       `json:"id" bson:"_id"`
	PlaceID    string       `json:"placeId" bson:"placeId"`
	Explicit   bool         `json:"explicit" bson:"explicit"`
	CacheHit   bool         `json:"cacheHit" bson:"cacheHit"`
	Source     MenuSource   `json:"source,omitempty" bson:"source,omitempty"`
	Reason     NoMenuReason `json:"reason,omitempty" bson:"reason,omitempty"`
	TiersTried []MenuSource `json:"tiersTried" bson:"tiersTried"`
	DurationMS int64        `json:"durationMs" bson:"durationMs"`
	ResolvedAt time.Time    `json:"resolvedAt" bson:"resolvedAt"`
}

// ProviderMenu is a partner-synced menu stored for authoritative lookup
type ProviderMenu struct {
	PlaceID    string         `json:"placeId" bson:"placeId"`
	Currency   string         `json:"currency" bson:"currency"`
	Categories []MenuCategory `json:"categories" bson:"categories"`
	UpdatedAt  time.Time      `json:"updatedAt" bson:"updatedAt"`
}
