// Package osutils wraps the few process and focus queries joybind needs.
package osutils
