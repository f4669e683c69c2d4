package tray

import (
	"encoding/base64"
	"os"
	"path/filepath"
)

// Named embedded icons. These are the monochrome 16px tray glyphs shipped
// with CloudToLocalLLM, used when no icon file can be resolved and to mirror
// connection state on the default icon.
const (
	IconIdle      = "idle"
	IconConnected = "connected"
	IconError     = "error"
)

// Icon is a resolved tray icon: either a readable file on disk or one of the
// named embedded icons. It is never empty.
type Icon struct {
	Path string // file on disk, when non-empty
	Name string // embedded icon name otherwise
}

// Embedded reports whether the icon refers to embedded data rather than a file.
func (ic Icon) Embedded() bool {
	return ic.Path == ""
}

// Data returns the icon's PNG bytes. A file that disappears between resolve
// and read degrades to the idle glyph.
func (ic Icon) Data() []byte {
	if ic.Path != "" {
		if data, err := os.ReadFile(ic.Path); err == nil {
			return data
		}
	}
	if data, ok := embeddedIcons[ic.Name]; ok {
		return data
	}
	return embeddedIcons[IconIdle]
}

// EmbeddedIcon returns the named embedded icon, falling back to idle for
// unknown names.
func EmbeddedIcon(name string) Icon {
	if _, ok := embeddedIcons[name]; !ok {
		name = IconIdle
	}
	return Icon{Name: name}
}

// DefaultFallbacks is the compiled-in sequence of well-known icon asset
// locations tried when the requested path is unreadable. userIconsDir is the
// per-user icons directory; empty skips those entries.
func DefaultFallbacks(userIconsDir string) []string {
	var paths []string
	if userIconsDir != "" {
		paths = append(paths,
			filepath.Join(userIconsDir, "tray_icon.png"),
			filepath.Join(userIconsDir, "cloudtolocalllm.png"),
		)
	}
	return append(paths,
		"/usr/share/icons/hicolor/32x32/apps/cloudtolocalllm.png",
		"/usr/share/pixmaps/cloudtolocalllm.png",
	)
}

// ResolveIcon runs the fallback chain: the exact path, then each fallback
// path in order, then the embedded idle glyph. It never fails; the worst
// outcome is the generic icon.
func ResolveIcon(path string, fallbacks []string) Icon {
	if readable(path) {
		return Icon{Path: path}
	}
	for _, fb := range fallbacks {
		if readable(fb) {
			return Icon{Path: fb}
		}
	}
	return Icon{Name: IconIdle}
}

func readable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Base64-encoded monochrome 16px PNGs, generated from the CloudToLocalLLM
// icon assets.
var embeddedIcons = map[string][]byte{
	IconIdle: mustDecode(
		"iVBORw0KGgoAAAANSUhEUgAAABAAAAAQCAQAAAC1+jfqAAAAAmJLR0QA/4ePzL8AAAAHdElNRQfpBgEO" +
			"GAvVNB70AAAAgElEQVQoz83RMQ6CUBAE0PfRBgItFzDxVh7DeA8bGo9lSW04ApCYtYBGBGqn3VdMdhJh" +
			"O0maz7X8SyajTnAEFzfVAgwad28h6njGWl5xDhly1WqBQkmG2OgZYgK7+ReQpK0/T2A0rIJRP72607gq" +
			"frZ4aM1jHZyUC9BrjaT9ufkAKf46eVLyT+wAAAAldEVYdGRhdGU6Y3JlYXRlADIwMjUtMDYtMDFUMTM6" +
			"MjI6MzkrMDA6MDAT6q3EAAAAJXRFWHRkYXRlOm1vZGlmeQAyMDI1LTA2LTAxVDEzOjIyOjM5KzAwOjAw" +
			"YrcVeAAAACh0RVh0ZGF0ZTp0aW1lc3RhbXAAMjAyNS0wNi0wMVQxNDoyNDoxMSswMDowMDQFC6IAAAAA" +
			"SUVORK5CYII="),
	IconConnected: mustDecode(
		"iVBORw0KGgoAAAANSUhEUgAAABYAAAAWEAQAAAA+LXjzAAAAIGNIUk0AAHomAACAhAAA+gAAAIDoAAB1" +
			"MAAA6mAAADqYAAAXcJy6UTwAAAACYktHRP//FKsxzQAAAAd0SU1FB+kGAQ0KAtZaaNoAAAFBSURBVDjL" +
			"7ZOxSwJhGMZ/BE3ieNNFS4ZDoxE4JCTBQS1tDSJNbeV04L8Rrm5BkARRDU1CWncIWY2dzrVoqzQFT8Nx" +
			"pxdGlzaFD3zw8X3v++N5X94XZvrPMu7BvgYvD3oFbwfsCzAaU0ALKZC+PwVzEuhyAMhvSfsL0vuT5JxI" +
			"K0cReOo35beDxMqZVCpJg4EiqjyMwo3mV8LcePDeG4C1BovzYJqQSEQjDjNg5cL4j5iOvQ3wyy4WpXZb" +
			"Y+VcBY699ZhgvYCkGymdlvp9fathO2K1onMA4PYhmQTXHfnpQK/n3916+Lob07F9CZKVlWo1yTSlclmq" +
			"VqVud+jW2gzc2udxp6IRTsXp+BZUbiNTcRcTDP7w+4nWtuS4kh4l51iyVqdfkqUfNi8zATRsSxPsOng5" +
			"0DN4WbBbYLSmgM70B/oE5jIou4+gv28AAAAldEVYdGRhdGU6Y3JlYXRlADIwMjUtMDYtMDFUMTM6MTA6" +
			"MDIrMDA6MDACdUjhAAAAJXRFWHRkYXRlOm1vZGlmeQAyMDI1LTA2LTAxVDEzOjEwOjAyKzAwOjAwcyjw" +
			"XQAAACh0RVh0ZGF0ZTp0aW1lc3RhbXAAMjAyNS0wNi0wMVQxMzoxMDowMiswMDowMCQ90YIAAAAASUVO" +
			"RK5CYII="),
	IconError: mustDecode(
		"iVBORw0KGgoAAAANSUhEUgAAABAAAAAQCAQAAAC1+jfqAAAAAmJLR0QA/4ePzL8AAAAHdElNRQfpBgEO" +
			"GQRckDIkAAAAhklEQVQoz82RsQ2DQAxFnxN0MAL0dKyVhiZ7oIzBVCkyALQgqKKfwkFK4HQ1z4Ul+9mF" +
			"bRJJsm8eWbGfugiU2Cb0dEw7IaflzhVJgxoRiUpPKQNWJv7GfQULM1wAO3Qdw1xIchZBxM8t5JcM5MSc" +
			"QOFCScuD5fCLGzWYBLx5Me+EgpqwCQk+v2IykhHf6oIAAAAldEVYdGRhdGU6Y3JlYXRlADIwMjUtMDYt" +
			"MDFUMTM6MjI6MzkrMDA6MDAT6q3EAAAAJXRFWHRkYXRlOm1vZGlmeQAyMDI1LTA2LTAxVDEzOjIyOjM5" +
			"KzAwOjAwYrcVeAAAACh0RVh0ZGF0ZTp0aW1lc3RhbXAAMjAyNS0wNi0wMVQxNDoyNTowNCswMDowMEVV" +
			"T6UAAAAASUVORK5CYII="),
}

func mustDecode(b64 string) []byte {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		panic("tray: bad embedded icon: " + err.Error())
	}
	return data
}
