package hue

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const groupsBody = `{
	"1": {"name": "Living room", "lights": ["1", "2"], "type": "Room", "action": {"on": false}},
	"4": {"name": "Kitchen", "lights": ["3"], "type": "Room", "action": {"on": true, "bri": 120}},
	"2": {"name": "Upstairs", "lights": ["5", "6"], "type": "LightGroup", "action": {"on": true}}
}`

func TestClient_Groups(t *testing.T) {
	b := newFakeBridge(t)
	b.respond(http.MethodGet, apiPath("groups"), groupsBody)
	client := newTestClient(t, b)

	groups, err := client.Groups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 3)
	assert.Equal(t, "Kitchen", groups[4].Name())

	bri, ok := GetInt(groups[4], "action", "bri")
	assert.True(t, ok)
	assert.Equal(t, 120, bri)
}

func TestClient_GroupIDs(t *testing.T) {
	b := newFakeBridge(t)
	b.respond(http.MethodGet, apiPath("groups"), groupsBody)
	client := newTestClient(t, b)

	ids, err := client.GroupIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 4}, ids)
}

func TestClient_Group(t *testing.T) {
	b := newFakeBridge(t)
	b.respond(http.MethodGet, apiPath("groups/0"), groupZero)
	client := newTestClient(t, b)

	group, err := client.Group(context.Background(), DefaultGroup)
	require.NoError(t, err)
	assert.Equal(t, "Group 0", group.Name())

	lights, ok := GetArray(group, "lights")
	assert.True(t, ok)
	assert.Len(t, lights, 3)
}

func TestClient_GroupNames(t *testing.T) {
	b := newFakeBridge(t)
	b.respond(http.MethodGet, apiPath("groups"), groupsBody)
	client := newTestClient(t, b)

	names, err := client.GroupNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Living room", 2: "Upstairs", 4: "Kitchen"}, names)
	assert.Len(t, b.recorded(), 1, "names come from a single request")
}

func TestClient_SetGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("puts the action", func(t *testing.T) {
		const response = `[{"success":{"/groups/1/action/bri_inc":100}},{"success":{"/groups/1/action/transitiontime":40}}]`
		b := newFakeBridge(t)
		b.respond(http.MethodPut, apiPath("groups/1/action"), response)
		client := newTestClient(t, b)

		raw, err := client.SetGroup(ctx, 1, NewState().BrightnessDelta(100).TransitionTime(40))
		require.NoError(t, err)
		assert.Equal(t, response, string(raw))

		reqs := b.recorded()
		require.Len(t, reqs, 1)
		assert.Equal(t, "/api/testuser/groups/1/action", reqs[0].Path)
		assert.JSONEq(t, `{"bri_inc":100,"transitiontime":40}`, reqs[0].Body)
	})

	t.Run("scene recall", func(t *testing.T) {
		b := newFakeBridge(t)
		b.respond(http.MethodPut, apiPath("groups/0/action"), `[{"success":{"/groups/0/action/scene":"AB34EF5"}}]`)
		client := newTestClient(t, b)

		_, err := client.SetGroup(ctx, DefaultGroup, NewState().Scene("AB34EF5"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"scene":"AB34EF5"}`, b.recorded()[0].Body)
	})

	t.Run("bridge errors are left in the response", func(t *testing.T) {
		const response = `[{"error":{"type":3,"address":"/groups/9","description":"resource, /groups/9, not available"}}]`
		b := newFakeBridge(t)
		b.respond(http.MethodPut, apiPath("groups/9/action"), response)
		client := newTestClient(t, b)

		raw, err := client.SetGroup(ctx, 9, NewState().On(false))
		require.NoError(t, err)

		results, err := ParseResults(raw)
		require.NoError(t, err)
		assert.True(t, IsNotFound(results.Err()))
	})

	t.Run("invalid action", func(t *testing.T) {
		b := newFakeBridge(t)
		client := newTestClient(t, b)

		_, err := client.SetGroup(ctx, 1, NewState().Set("bri_inc", Int(500)))
		assert.ErrorIs(t, err, ErrInvalidStateValue)
		assert.Empty(t, b.recorded())
	})
}
