/*Package e88 provides an unofficial, standalone transmitter for the cheap "E88"-family WiFi drones
that are flown from a phone app over UDP.

Disclaimer

The author(s) of this package is/are in no way affiliated with the manufacturers of these drones.
The package has been developed by capturing and examining the data packets sent by the phone app;
the protocol will probably be revised as more knowledge of it is obtained.

Use this package at your own risk.  The author(s) is/are in no way responsible for any damage caused either to or by the
drone when using this software.

Features

The following features have been implemented...
  * Stick-based flight control, ie. for joystick, game-, or flight-controller
  * Drone built-in one-key commands, eg. TakeOff(), Land(), Emergency(), Calibrate()
  * Macro-level flight control, eg. Forward(), Clockwise()
  * Persistent modes: rotate, headless and stay-high
  * Both known wire formats: 8-byte 'legacy' and 20-byte 'new' frames
  * Frame decoding, including from tcpdump captures
  * Use as a gobot driver

Concepts

Stateless Protocol

The drone does not acknowledge anything.  Every frame carries the complete control state and frames
are sent continuously (25 per second by default) by a background Goroutine started with Start().
If frames stop arriving the drone will usually descend and land on its own.

One-Shot Commands

Actions such as takeoff are signalled by setting a flag bit in a run of consecutive frames (20 for the legacy format,
50 for the new format) after which the bit is dropped again.  Triggering a command while it is still being
signalled restarts the run.

Funcs vs. Channels

Stick updates are available in two forms: single-shot function calls and a streaming channel,
ie. SetAxes()/UpdateSticks() vs. StartStickListener().

Use whichever paradigm you prefer; all of the setters are safe to call from any Goroutine while frames are being sent.

*/
package e88
