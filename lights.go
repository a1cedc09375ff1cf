package hue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// groupLights is the part of a group object listing its members.
type groupLights struct {
	Lights *[]any `json:"lights"`
}

// LightIDs returns the ids of all lights, as listed by the default group.
func (c *Client) LightIDs(ctx context.Context) ([]int, error) {
	data, err := c.Fetch(ctx, "groups/"+strconv.Itoa(DefaultGroup))
	if err != nil {
		return nil, err
	}

	group, err := decodeResponse[groupLights](data, "default group")
	if err != nil {
		return nil, err
	}
	if group.Lights == nil {
		return nil, fmt.Errorf("failed to parse default group: no lights list (body: %s)", truncatePreview(data))
	}

	ids := make([]int, 0, len(*group.Lights))
	for _, v := range *group.Lights {
		id, err := parseID(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse default group: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Light returns all attributes of one light.
func (c *Client) Light(ctx context.Context, id int) (Attributes, error) {
	data, err := c.Fetch(ctx, "lights/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	return decodeResponse[Attributes](data, "light")
}

// Lights returns every light with full detail. The response can be large;
// prefer LightIDs and Light on memory constrained targets.
func (c *Client) Lights(ctx context.Context) (map[int]Attributes, error) {
	data, err := c.Fetch(ctx, "lights")
	if err != nil {
		return nil, err
	}
	lights, err := decodeResponse[map[string]Attributes](data, "lights")
	if err != nil {
		return nil, err
	}
	return keyedByID(lights)
}

// LightNames maps light ids to names, fetching each light individually.
func (c *Client) LightNames(ctx context.Context) (map[int]string, error) {
	ids, err := c.LightIDs(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(ids))
	for _, id := range ids {
		light, err := c.Light(ctx, id)
		if err != nil {
			return nil, err
		}
		names[id] = light.Name()
	}
	return names, nil
}

// SetLight changes one or more state attributes of a light and returns the
// bridge's response unmodified.
//
// Example:
//
//	_, err := client.SetLight(ctx, 1, hue.NewState().On(true).Brightness(254).Hue(50000).Saturation(254))
func (c *Client) SetLight(ctx context.Context, id int, state State) (json.RawMessage, error) {
	if err := state.Validate(LightStateFields); err != nil {
		return nil, err
	}
	return c.Update(ctx, "lights/"+strconv.Itoa(id)+"/state", state)
}
