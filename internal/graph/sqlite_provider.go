package graph

import (
	"context"

	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/storage/sqlite"
)

// SQLiteProvider adapts *sqlite.DB to the Provider interface.
type SQLiteProvider struct {
	DB *sqlite.DB
}

func (p SQLiteProvider) Outbound(ctx context.Context, id string) ([]model.Edge, error) {
	return p.DB.OutboundEdges(ctx, id)
}

func (p SQLiteProvider) Inbound(ctx context.Context, id string) ([]model.Edge, error) {
	return p.DB.InboundEdges(ctx, id)
}

func (p SQLiteProvider) Metadata(ctx context.Context, id string) (*NodeMetadata, error) {
	m, err := p.DB.GetMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return &NodeMetadata{ID: m.ID, Title: m.Title, Type: m.Type, Value: m.Value, Verified: m.Verified, Tags: m.Tags}, nil
}
