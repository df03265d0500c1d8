/*
go-sscma provides multi-object tracking for camera equipped edge devices.  It
takes the per frame bounding box output of an object detection model and
assigns each object a stable track ID across frames using the ByteTrack
algorithm.

The tracker subpackage holds the ByteTrack implementation itself: a Kalman
filter motion model, the Jonker-Volgenant assignment solver and the track
lifecycle.  The Pipeline in this package wires detector output through
non-maximum suppression, class filtering, the tracker, trail history and zone
events for use by an application's action triggers.

Any detector that reports boxes, scores and class labels can feed the
tracker.

See example code and usage in the examples subdirectory.
*/
package sscma
