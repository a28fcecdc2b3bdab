package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeScale(t *testing.T) {
	for _, ts := range AllTimeScales() {
		t.Run(ts.String(), func(t *testing.T) {
			parsed, err := ParseTimeScale(ts.String())
			require.NoError(t, err)
			assert.Equal(t, ts, parsed)
		})
	}
}

func TestParseTimeScale_Invalid(t *testing.T) {
	for _, s := range []string{"", "utc", "GPS", "XYZ"} {
		_, err := ParseTimeScale(s)
		assert.ErrorIs(t, err, ErrParse, "input %q", s)
	}
}

func TestTimeScale_IsValid(t *testing.T) {
	assert.False(t, TimeScaleUnknown.IsValid())
	assert.True(t, GPST.IsValid())
	assert.True(t, TT.IsValid())
	assert.False(t, TimeScale(200).IsValid())
	assert.Equal(t, "TimeScale(200)", TimeScale(200).String())
}

func TestTimeScale_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]TimeScale{"scale": BDT})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scale":"BDT"}`, string(data))

	var decoded struct {
		Scale TimeScale `json:"scale"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"scale":"GST"}`), &decoded))
	assert.Equal(t, GST, decoded.Scale)

	require.Error(t, json.Unmarshal([]byte(`{"scale":"nope"}`), &decoded))
}
