package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedFlag = `{
	"key": "checkout",
	"name": "Checkout",
	"active": true,
	"filters": {
		"aggregation_group_type_index": 1,
		"super_groups": null,
		"groups": [
			{"properties": [], "rollout_percentage": null, "variant": null, "future": {"a": [1, 2]}},
			{"rollout_percentage": 50}
		],
		"multivariate": {
			"variants": [{"key": "control", "name": null, "rollout_percentage": 100, "extra": true}],
			"seed": "x"
		},
		"payloads": {}
	},
	"variants": []
}`

func TestFlag_RoundTrip(t *testing.T) {
	var f Flag
	require.NoError(t, json.Unmarshal([]byte(nestedFlag), &f))

	require.NotNil(t, f.Filters)
	require.Len(t, f.Filters.Groups, 2)
	assert.Nil(t, f.Filters.Groups[0].RolloutPercentage)
	assert.Equal(t, 50.0, *f.Filters.Groups[1].RolloutPercentage)
	assert.Equal(t, "control", f.Filters.Multivariate.Variants[0].Key)
	assert.Equal(t, 1.0, f.Filters.Extra["aggregation_group_type_index"])

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, nestedFlag, string(b))

	pretty, err := f.Pretty()
	require.NoError(t, err)
	assert.JSONEq(t, nestedFlag, string(pretty))
}

func TestFlag_NullMultivariate(t *testing.T) {
	src := `{"key":"a","name":"A","active":false,"filters":{"groups":[],"multivariate":null}}`
	var f Flag
	require.NoError(t, json.Unmarshal([]byte(src), &f))
	assert.Nil(t, f.Filters.Multivariate)

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(b))
}

func TestFlag_TypedFieldsOverrideExtra(t *testing.T) {
	pct := 30.0
	g := Group{RolloutPercentage: &pct, Extra: map[string]any{"rollout_percentage": nil, "future": "x"}}
	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"rollout_percentage": 30, "future": "x"}`, string(b))
}

func TestFromMap(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(nestedFlag), &data))

	f, err := FromMap(data)
	require.NoError(t, err)
	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, nestedFlag, string(b))
}

func TestRemoteFlag_JSON(t *testing.T) {
	src := `{"id": 7, "key": "a", "name": "A", "active": true,
		"filters": {"groups": [{"rollout_percentage": 10, "future": 1}]}}`
	var rf RemoteFlag
	require.NoError(t, json.Unmarshal([]byte(src), &rf))
	assert.Equal(t, int64(7), rf.ID)
	assert.Equal(t, 1.0, rf.Filters.Groups[0].Extra["future"])

	b, err := json.Marshal(rf)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(b))
}

func TestFlag_Canonical(t *testing.T) {
	a := `{"key":"a","name":"A","active":true,"filters":{"payloads":{"z":1,"a":2},"groups":[{"b":1,"a":2}]}}`
	b := `{"filters":{"groups":[{"a":2,"b":1}],"payloads":{"a":2,"z":1}},"active":true,"name":"A","key":"a"}`

	var fa, fb Flag
	require.NoError(t, json.Unmarshal([]byte(a), &fa))
	require.NoError(t, json.Unmarshal([]byte(b), &fb))
	ca, err := fa.Canonical()
	require.NoError(t, err)
	cb, err := fb.Canonical()
	require.NoError(t, err)
	assert.Equal(t, string(ca), string(cb))
}
