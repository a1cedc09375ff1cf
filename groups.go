package hue

import (
	"context"
	"encoding/json"
	"strconv"
)

// Groups returns every group with full detail. The default group 0 is not
// included; the bridge only lists user and room groups here.
func (c *Client) Groups(ctx context.Context) (map[int]Attributes, error) {
	data, err := c.Fetch(ctx, "groups")
	if err != nil {
		return nil, err
	}
	groups, err := decodeResponse[map[string]Attributes](data, "groups")
	if err != nil {
		return nil, err
	}
	return keyedByID(groups)
}

// GroupIDs returns the ids of all groups in ascending order.
func (c *Client) GroupIDs(ctx context.Context) ([]int, error) {
	groups, err := c.Groups(ctx)
	if err != nil {
		return nil, err
	}
	return sortedIDs(groups), nil
}

// Group returns all attributes of one group.
func (c *Client) Group(ctx context.Context, id int) (Attributes, error) {
	data, err := c.Fetch(ctx, "groups/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	return decodeResponse[Attributes](data, "group")
}

// GroupNames maps group ids to names from a single groups request.
func (c *Client) GroupNames(ctx context.Context) (map[int]string, error) {
	groups, err := c.Groups(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(groups))
	for id, group := range groups {
		names[id] = group.Name()
	}
	return names, nil
}

// SetGroup applies an action to every light in a group and returns the
// bridge's response unmodified.
//
// Example:
//
//	_, err := client.SetGroup(ctx, 1, hue.NewState().BrightnessDelta(100).TransitionTime(40))
func (c *Client) SetGroup(ctx context.Context, id int, state State) (json.RawMessage, error) {
	if err := state.Validate(GroupActionFields); err != nil {
		return nil, err
	}
	return c.Update(ctx, "groups/"+strconv.Itoa(id)+"/action", state)
}
