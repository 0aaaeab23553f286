package model

import "time"

type BaseModel struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *BaseModel) GetID() string { return b.ID }

// Base exposes the embedded timestamps to generic collection code.
func (b *BaseModel) Base() *BaseModel { return b }
