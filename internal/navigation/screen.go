// Package navigation defines the app's screens and the routes that reach them.
package navigation

import (
	"fmt"
	"strings"
)

// Screen identifies one screen of the app.
type Screen int

const (
	Dashboard Screen = iota
	AddGiftcon
	StoreMap
	GeofenceAlert
	Detail
)

// giftconIDParam is the placeholder of route patterns taking a voucher id.
const giftconIDParam = "{giftconId}"

// registrationID is what clients put in the add route when no voucher is edited.
const registrationID = "null"

var patterns = map[Screen]string{
	Dashboard:     "dashboard",
	AddGiftcon:    "add_gifticon/" + giftconIDParam,
	StoreMap:      "store_map",
	GeofenceAlert: "geofence_alert",
	Detail:        "gifticon_detail/" + giftconIDParam,
}

// Pattern returns the route template of the screen.
func (s Screen) Pattern() string {
	return patterns[s]
}

// String returns the screen's route name without parameters.
func (s Screen) String() string {
	p, ok := patterns[s]
	if !ok {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	name, _, _ := strings.Cut(p, "/")
	return name
}

// Route is a screen plus its typed parameters.
type Route struct {
	Screen    Screen
	GiftconID string
}

// DashboardRoute routes to the voucher list.
func DashboardRoute() Route { return Route{Screen: Dashboard} }

// RegisterRoute routes to the add screen in registration mode.
func RegisterRoute() Route { return Route{Screen: AddGiftcon} }

// EditRoute routes to the add screen editing id.
func EditRoute(id string) Route { return Route{Screen: AddGiftcon, GiftconID: id} }

// DetailRoute routes to the detail screen of id.
func DetailRoute(id string) Route { return Route{Screen: Detail, GiftconID: id} }

// StoreMapRoute routes to the store map placeholder.
func StoreMapRoute() Route { return Route{Screen: StoreMap} }

// GeofenceAlertRoute routes to the proximity alert placeholder.
func GeofenceAlertRoute() Route { return Route{Screen: GeofenceAlert} }

// IsEdit reports whether the route opens the add screen on an existing voucher.
func (r Route) IsEdit() bool {
	return r.Screen == AddGiftcon && r.GiftconID != ""
}

// Path renders the route the way clients navigate to it.
func (r Route) Path() string {
	switch r.Screen {
	case AddGiftcon:
		id := r.GiftconID
		if id == "" {
			id = registrationID
		}
		return strings.Replace(patterns[AddGiftcon], giftconIDParam, id, 1)
	case Detail:
		return strings.Replace(patterns[Detail], giftconIDParam, r.GiftconID, 1)
	default:
		return r.Screen.String()
	}
}

// Parse turns a path such as "add_gifticon/g1" into a Route. The add screen
// accepts a missing, empty or "null" id as registration mode; the detail
// screen requires an id.
func Parse(path string) (Route, error) {
	p := strings.Trim(strings.TrimSpace(path), "/")
	name, arg, hasArg := strings.Cut(p, "/")

	switch name {
	case Dashboard.String(), StoreMap.String(), GeofenceAlert.String():
		if hasArg {
			return Route{}, fmt.Errorf("route %q takes no arguments", path)
		}
		return Route{Screen: screenByName[name]}, nil
	case AddGiftcon.String():
		if strings.Contains(arg, "/") {
			return Route{}, fmt.Errorf("malformed route %q", path)
		}
		if arg == "" || arg == registrationID {
			return RegisterRoute(), nil
		}
		return EditRoute(arg), nil
	case Detail.String():
		if arg == "" || arg == registrationID || strings.Contains(arg, "/") {
			return Route{}, fmt.Errorf("route %q needs a giftcon id", path)
		}
		return DetailRoute(arg), nil
	}
	return Route{}, fmt.Errorf("unknown route %q", path)
}

var screenByName = map[string]Screen{
	Dashboard.String():     Dashboard,
	StoreMap.String():      StoreMap,
	GeofenceAlert.String(): GeofenceAlert,
}
