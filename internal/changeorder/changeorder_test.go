package changeorder

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guestbookPreview = `{
  "stepKeys": ["v1:Namespace:guestbook", "apps/v1:Deployment:guestbook:frontend"],
  "changeSteps": {
    "v1:Namespace:guestbook": {
      "id": "v1:Namespace:guestbook",
      "action": "UnChange",
      "from": {"id": "v1:Namespace:guestbook", "type": "Kubernetes", "attributes": {"kind": "Namespace"}, "dependsOn": null},
      "to": {"id": "v1:Namespace:guestbook", "type": "Kubernetes", "attributes": {"kind": "Namespace"}, "dependsOn": null}
    },
    "apps/v1:Deployment:guestbook:frontend": {
      "id": "apps/v1:Deployment:guestbook:frontend",
      "action": "Create",
      "from": null,
      "to": {"id": "apps/v1:Deployment:guestbook:frontend", "type": "Kubernetes", "attributes": {}, "dependsOn": ["v1:Namespace:guestbook"]}
    }
  }
}`

func TestDecode(t *testing.T) {
	order, err := Decode([]byte(guestbookPreview))
	require.NoError(t, err)

	assert.Equal(t, 2, order.Len())
	assert.Equal(t, []string{"apps/v1:Deployment:guestbook:frontend", "v1:Namespace:guestbook"}, order.SortedIDs())

	deploy := order.ChangeSteps["apps/v1:Deployment:guestbook:frontend"]
	require.NotNil(t, deploy)
	assert.Equal(t, ActionCreate, deploy.Action)
	assert.Nil(t, deploy.From)
	assert.Equal(t, []string{"v1:Namespace:guestbook"}, deploy.To.DependencyIDs())

	ns := order.ChangeSteps["v1:Namespace:guestbook"]
	assert.Equal(t, ActionUnchanged, ns.Action)
	assert.Empty(t, ns.To.DependencyIDs())
}

func TestDecode_Malformed(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		reason string
	}{
		{name: "empty output", input: "  \n", reason: "empty output"},
		{name: "not json", input: "Error: stack not found", reason: "not a JSON change order"},
		{name: "unknown action", input: `{"changeSteps": {"a": {"id": "a", "action": "Replace"}}}`, reason: "not a JSON change order"},
		{name: "missing action", input: `{"changeSteps": {"a": {"id": "a"}}}`, reason: "invalid change step"},
		{name: "null step", input: `{"changeSteps": {"a": null}}`, reason: "invalid change step"},
		{name: "key mismatch", input: `{"changeSteps": {"a": {"id": "b", "action": "Create"}}}`, reason: "invalid change step"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order, err := Decode([]byte(tc.input))
			require.Error(t, err)
			assert.Nil(t, order)
			assert.True(t, IsMalformed(err))

			var me *MalformedInputError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tc.reason, me.Reason)
		})
	}
}

func TestDecode_MissingIDTakesKey(t *testing.T) {
	order, err := Decode([]byte(`{"stepKeys": [], "changeSteps": {"v1:Namespace:x": {"action": "Delete"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "v1:Namespace:x", order.ChangeSteps["v1:Namespace:x"].ID)
}

func TestDecode_EmptyOrder(t *testing.T) {
	order, err := Decode([]byte(`{"stepKeys": null, "changeSteps": null}`))
	require.NoError(t, err)
	assert.Equal(t, 0, order.Len())
	assert.NotNil(t, order.ChangeSteps)
}

func TestAction_JSONNames(t *testing.T) {
	for a, name := range actionNames {
		data, err := json.Marshal(a)
		require.NoError(t, err)
		assert.JSONEq(t, `"`+name+`"`, string(data))
	}

	_, err := json.Marshal(ActionUnknown)
	assert.Error(t, err)
	assert.False(t, ActionUnknown.Valid())
	assert.Equal(t, "Action(0)", ActionUnknown.String())
}

func TestNewLiveDiff(t *testing.T) {
	order, err := Decode([]byte(guestbookPreview))
	require.NoError(t, err)

	diff := NewLiveDiff(order)

	require.Contains(t, diff.Runtime, "apps/v1:Deployment:guestbook:frontend")
	assert.Nil(t, diff.Runtime["apps/v1:Deployment:guestbook:frontend"])
	assert.NotNil(t, diff.Spec["apps/v1:Deployment:guestbook:frontend"])
	assert.Equal(t, "Kubernetes", diff.Runtime["v1:Namespace:guestbook"].Type)
}
