package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/graphlens/dashboard/pkg/explorer"
	"github.com/graphlens/dashboard/pkg/logger"
)

// FetchDataset loads the full node and edge set for one subject.
// Network failures surface as errors; a payload of unexpected shape
// decodes to an empty dataset instead, so the explorer keeps rendering.
func (c *Client) FetchDataset(ctx context.Context, subjectID string) (*explorer.Dataset, error) {
	body, err := c.get(ctx, "/graph/"+url.PathEscape(subjectID))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Nodes []explorer.Node `json:"nodes"`
		Edges []explorer.Edge `json:"edges"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Warn("[API] Unexpected graph payload, treating as empty", "subject_id", subjectID, "err", err)
		return explorer.NewDataset(subjectID, nil, nil), nil
	}

	return explorer.NewDataset(subjectID, payload.Nodes, payload.Edges), nil
}
