package graph

import (
	"testing"

	"github.com/nextdotid/relationservice/testing/assert"
	"github.com/nextdotid/relationservice/testing/require"
)

func TestDateTime_UnmarshalVariants(t *testing.T) {
	for _, form := range []string{
		`"2022-05-12 09:30:00"`,
		`"2022-05-12T09:30:00"`,
		`"2022-05-12T09:30:00Z"`,
	} {
		var d DateTime
		require.NoError(t, d.UnmarshalJSON([]byte(form)), "form %s", form)
		assert.Equal(t, int64(1652347800), d.Timestamp(), "form %s", form)
	}

	var d DateTime
	require.NotNil(t, d.UnmarshalJSON([]byte(`"12/05/2022"`)))
}

func TestDateTime_MarshalForm(t *testing.T) {
	d := FromUnix(1652347800)
	out, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2022-05-12 09:30:00"`, string(out))
}
