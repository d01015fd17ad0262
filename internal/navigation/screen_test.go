package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutePath(t *testing.T) {
	assert.Equal(t, "dashboard", DashboardRoute().Path())
	assert.Equal(t, "add_gifticon/null", RegisterRoute().Path())
	assert.Equal(t, "add_gifticon/g2", EditRoute("g2").Path())
	assert.Equal(t, "gifticon_detail/g2", DetailRoute("g2").Path())
	assert.Equal(t, "store_map", StoreMapRoute().Path())
	assert.Equal(t, "geofence_alert", GeofenceAlertRoute().Path())
}

func TestScreenString(t *testing.T) {
	assert.Equal(t, "add_gifticon", AddGiftcon.String())
	assert.Equal(t, "add_gifticon/{giftconId}", AddGiftcon.Pattern())
	assert.Equal(t, "Screen(42)", Screen(42).String())
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		path      string
		expected  Route
		expectErr bool
	}{
		{name: "dashboard", path: "dashboard", expected: DashboardRoute()},
		{name: "leading slash", path: "/store_map", expected: StoreMapRoute()},
		{name: "geofence", path: "geofence_alert", expected: GeofenceAlertRoute()},
		{name: "register without id", path: "add_gifticon", expected: RegisterRoute()},
		{name: "register with null", path: "add_gifticon/null", expected: RegisterRoute()},
		{name: "register with trailing slash", path: "add_gifticon/", expected: RegisterRoute()},
		{name: "edit", path: "add_gifticon/g2", expected: EditRoute("g2")},
		{name: "detail", path: "gifticon_detail/g3", expected: DetailRoute("g3")},
		{name: "detail without id", path: "gifticon_detail", expectErr: true},
		{name: "detail with null", path: "gifticon_detail/null", expectErr: true},
		{name: "argument on dashboard", path: "dashboard/1", expectErr: true},
		{name: "nested edit id", path: "add_gifticon/a/b", expectErr: true},
		{name: "unknown", path: "settings", expectErr: true},
		{name: "empty", path: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			route, err := Parse(tc.path)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, route)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	routes := []Route{
		DashboardRoute(), RegisterRoute(), EditRoute("g1"),
		DetailRoute("g1"), StoreMapRoute(), GeofenceAlertRoute(),
	}
	for _, r := range routes {
		parsed, err := Parse(r.Path())
		require.NoError(t, err, r.Path())
		assert.Equal(t, r, parsed)
	}
	assert.True(t, EditRoute("g1").IsEdit())
	assert.False(t, RegisterRoute().IsEdit())
}
