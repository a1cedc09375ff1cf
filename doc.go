// Package hue provides a Go client library for a Philips Hue bridge on the
// local network, speaking the bridge's v1 REST API.
//
// A Client targets exactly one bridge. It finds the bridge with an SSDP
// search, registers an application identity with it (the operator presses
// the bridge's link button), saves the resulting credential and then issues
// authenticated requests for lights and groups.
//
// # Setup
//
// Setup loads saved settings and verifies them, or discovers and pairs:
//
//	client := hue.NewClient(
//	    hue.WithSettingsStore(hue.NewFileSettingsStore("bridge.json")),
//	    hue.WithDeviceType("my-app", "kitchen-pi"),
//	)
//	if err := client.Setup(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Pairing polls the bridge once per second for 20 seconds. Press the link
// button while ">>> Press link button on Hue bridge to register <<<" is shown.
// If the bridge later rejects the credential, call Reset to start over.
//
// # Lights and Groups
//
//	ids, err := client.LightIDs(ctx)
//	names, err := client.LightNames(ctx)
//	_, err = client.SetLight(ctx, 1, hue.NewState().On(true).Brightness(254))
//	_, err = client.SetGroup(ctx, 1, hue.NewState().BrightnessDelta(100).TransitionTime(40))
//
// Nothing is cached: every call queries the bridge. There is no automatic
// retry; a failed call returns its error to the caller.
//
// # Error Handling
//
//	if err := client.Setup(ctx); err != nil {
//	    if errors.Is(err, hue.ErrBridgeNotFound) {
//	        // No bridge answered the SSDP search
//	    } else if errors.Is(err, hue.ErrPairingTimeout) {
//	        // The link button was not pressed in time
//	    }
//	}
//
//	if _, err := client.Lights(ctx); hue.IsUnauthorized(err) {
//	    // The bridge no longer knows the credential
//	}
package hue
