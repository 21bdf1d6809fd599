// Package camera delivers preview frames to the camera screen.
//
// A Source runs its own frame goroutine and only publishes the most recent
// decoded frame; it never touches application state. The latest frame stays
// readable after Stop, so a capture right after pausing the preview still has
// something to save.
//
// Implementations:
//   - WebcamSource: V4L2 device via github.com/blackjack/webcam (Linux only),
//     MJPEG preferred, YUYV converted in-process.
//   - PatternSource: synthetic colour bars for the simulator and tests.
package camera
